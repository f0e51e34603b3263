// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Provider identifies the chat-completion service used for card generation.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// CredentialConfig tells the credential resolver where to look for the API key.
type CredentialConfig struct {
	// EnvVar is the environment variable holding the key (default AIMLAPI_KEY).
	EnvVar string `json:"env_var" yaml:"env_var" validate:"required"`

	// DotenvFile is a KEY=value file consulted when EnvVar is unset (default .env).
	DotenvFile string `json:"dotenv_file" yaml:"dotenv_file"`

	// SecretsDir is a directory of one-file-per-secret values (default .secrets).
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`

	// SecretName is the file name looked up inside SecretsDir (default aimlapi-key).
	SecretName string `json:"secret_name" yaml:"secret_name"`
}

// DocumentConfig holds settings for locating the input PDF.
type DocumentConfig struct {
	// SourceDir holds the input PDFs. It is created on first run.
	SourceDir string `json:"source_dir" yaml:"source_dir" validate:"required"`

	// DefaultName is the PDF picked without prompting when it exists in SourceDir.
	DefaultName string `json:"default_name" yaml:"default_name" validate:"required"`

	// Path, when set, names the input PDF directly and bypasses DefaultName.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// OutputConfig holds settings for the flashcard output file.
type OutputConfig struct {
	// Dir is the directory the output file is written to.
	Dir string `json:"dir" yaml:"dir" validate:"required"`

	// FileName is the output file name (default flashcards.txt).
	FileName string `json:"file_name" yaml:"file_name" validate:"required"`
}

// AIConfig holds settings for the chat-completion backend.
type AIConfig struct {
	// Provider selects the backend implementation.
	Provider Provider `json:"provider" yaml:"provider" validate:"required,oneof=openai gemini"`

	// Model is the model identifier (e.g. "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model" validate:"required"`

	// BaseURL overrides the API endpoint of the selected provider.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// UserAgent is sent with every HTTP request of the OpenAI backend.
	// Empty means the build's default.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// Config groups every setting of a flashcard run. It is built once at
// startup and passed to each stage.
type Config struct {
	Credentials CredentialConfig `json:"credentials" yaml:"credentials"`
	Documents   DocumentConfig   `json:"documents" yaml:"documents"`
	Output      OutputConfig     `json:"output" yaml:"output"`
	AI          AIConfig         `json:"ai" yaml:"ai"`

	// HistoryDB is the SQLite run ledger path. Empty disables the ledger.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" validate:"required,oneof=debug info warn error"`
}

// ErrInvalidConfig is returned by Validate when any field fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags and reports
// every failing field in one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
