// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the flashcard-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/flashcard-engine/internal/history"
	"github.com/pdiddy/flashcard-engine/internal/locate"
	"github.com/pdiddy/flashcard-engine/internal/logging"
	"github.com/pdiddy/flashcard-engine/internal/pipeline"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the flashcard pipeline.
var rootCmd = &cobra.Command{
	Use:   "flashcard-engine [pdf]",
	Short: "Generate Anki flashcards from a PDF with a language model",
	Long: `flashcard-engine extracts the text of a PDF, splits it into chunks of
1000 characters and asks a chat-completion model to turn each chunk into
question;answer lines. The answers are concatenated into flashcards.txt,
ready for Anki import.

Without an argument the default document is read from the source directory;
if it is missing, the PDFs found there are listed for selection.

The API key is read from AIMLAPI_KEY, a .env file or .secrets/aimlapi-key.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	if len(args) == 1 {
		cfg.Documents.Path = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	p := &pipeline.Pipeline{
		Config:   cfg,
		Selector: locate.ConsoleSelector{In: os.Stdin, Out: os.Stdout},
		Out:      os.Stdout,
		Logger:   logger,
	}
	if cfg.HistoryDB != "" {
		store := history.NewLazyStore(cfg.HistoryDB)
		defer store.Close()
		p.History = store
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) && !se.Fatal {
			logger.Error("run stopped", "run", res.RunID, "stage", se.Stage, "error", se.Err)
			fmt.Fprintf(os.Stderr, "No flashcards written: %v\n", err)
			return nil
		}
		return err
	}

	fmt.Printf("Flashcards written to %s\n", res.OutputPath)
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./flashcard-engine.yaml or ~/.config/flashcard-engine/flashcard-engine.yaml)")
	flags.String("source-dir", defaultSourceDir, "directory holding input PDFs")
	flags.String("default-document", defaultDocument, "PDF used without prompting when present in the source directory")
	flags.String("output-dir", defaultOutputDir, "directory the flashcard file is written to")
	flags.String("output-file", defaultOutputFile, "flashcard file name")
	flags.String("provider", defaultProvider, "completion backend: openai or gemini")
	flags.String("model", "", "model identifier (default depends on provider)")
	flags.String("base-url", "", "API endpoint override for OpenAI-compatible providers")
	flags.String("history-db", "", "SQLite run ledger path (empty disables the ledger)")
	flags.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")

	for key, flag := range flagKeys {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("flashcard-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "flashcard-engine"))
		}
	}

	viper.SetEnvPrefix("FLASHCARD_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
