// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/flashcard-engine/internal/cards"
	"github.com/pdiddy/flashcard-engine/internal/output"
	"github.com/pdiddy/flashcard-engine/pkg/types"
)

const (
	defaultSourceDir  = "SOURCE_DOCUMENTS"
	defaultDocument   = "Global Business - Unit 2.pdf"
	defaultOutputDir  = "."
	defaultOutputFile = output.DefaultFileName
	defaultProvider   = string(types.ProviderOpenAI)
	defaultLogLevel   = "info"
)

// flagKeys maps viper keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"documents.source_dir":   "source-dir",
	"documents.default_name": "default-document",
	"output.dir":             "output-dir",
	"output.file_name":       "output-file",
	"ai.provider":            "provider",
	"ai.model":               "model",
	"ai.base_url":            "base-url",
	"history_db":             "history-db",
	"log_level":              "log-level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("credentials.env_var", "AIMLAPI_KEY")
	v.SetDefault("credentials.dotenv_file", ".env")
	v.SetDefault("credentials.secrets_dir", ".secrets")
	v.SetDefault("credentials.secret_name", "aimlapi-key")
	v.SetDefault("documents.source_dir", defaultSourceDir)
	v.SetDefault("documents.default_name", defaultDocument)
	v.SetDefault("output.dir", defaultOutputDir)
	v.SetDefault("output.file_name", defaultOutputFile)
	v.SetDefault("ai.provider", defaultProvider)
	v.SetDefault("ai.user_agent", "flashcard-engine/"+version)
	v.SetDefault("log_level", defaultLogLevel)
}

// loadConfig builds the run configuration from v. An empty model is
// replaced with the provider's default.
func loadConfig(v *viper.Viper) types.Config {
	cfg := types.Config{
		Credentials: types.CredentialConfig{
			EnvVar:     v.GetString("credentials.env_var"),
			DotenvFile: v.GetString("credentials.dotenv_file"),
			SecretsDir: v.GetString("credentials.secrets_dir"),
			SecretName: v.GetString("credentials.secret_name"),
		},
		Documents: types.DocumentConfig{
			SourceDir:   v.GetString("documents.source_dir"),
			DefaultName: v.GetString("documents.default_name"),
		},
		Output: types.OutputConfig{
			Dir:      v.GetString("output.dir"),
			FileName: v.GetString("output.file_name"),
		},
		AI: types.AIConfig{
			Provider:  types.Provider(v.GetString("ai.provider")),
			Model:     v.GetString("ai.model"),
			BaseURL:   v.GetString("ai.base_url"),
			UserAgent: v.GetString("ai.user_agent"),
		},
		HistoryDB: v.GetString("history_db"),
		LogLevel:  v.GetString("log_level"),
	}

	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case types.ProviderOpenAI:
			cfg.AI.Model = cards.DefaultOpenAIModel
		case types.ProviderGemini:
			cfg.AI.Model = cards.DefaultGeminiModel
		}
	}
	return cfg
}
