// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

const configFileName = "flashcard-engine.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the source directory and a starter config file",
	Long: `Init creates the directory that holds input PDFs and writes
flashcard-engine.yaml with the current settings to the working directory.
An existing config file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())

	if err := os.MkdirAll(cfg.Documents.SourceDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.Documents.SourceDir, err)
	}
	fmt.Printf("Place your PDF documents in %s/\n", cfg.Documents.SourceDir)

	if _, err := os.Stat(configFileName); err == nil {
		fmt.Printf("%s already exists, not overwritten\n", configFileName)
		return nil
	}

	data, err := starterConfig(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(configFileName, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}
	fmt.Printf("Wrote %s\n", configFileName)
	return nil
}

// starterConfig renders cfg as a config file. The User-Agent is left out
// so it keeps following the running binary's version.
func starterConfig(cfg types.Config) ([]byte, error) {
	cfg.AI.UserAgent = ""
	return yaml.Marshal(cfg)
}

func init() {
	rootCmd.AddCommand(initCmd)
}
