// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the API key used for card generation.
//
// The key is looked up in order: the process environment, a KEY=value
// dotenv file, and a directory of plain-text secret files where the filename
// is the key name and the trimmed contents are the value.
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// ErrMissingCredential is returned when no source provides a non-empty key.
var ErrMissingCredential = errors.New("no API key found")

// Source names where a credential was found.
type Source string

const (
	SourceEnv     Source = "env"
	SourceDotenv  Source = "dotenv"
	SourceSecrets Source = "secrets-dir"
)

// Credential is a resolved API key and the source it came from.
type Credential struct {
	Key    string
	Source Source
}

// Resolve returns the first non-empty key found in the environment, the
// dotenv file, or the secrets directory. A dotenv file or secrets directory
// that cannot be read produces a warning on stderr and falls through.
func Resolve(cfg types.CredentialConfig) (Credential, error) {
	if v := strings.TrimSpace(os.Getenv(cfg.EnvVar)); v != "" {
		return Credential{Key: v, Source: SourceEnv}, nil
	}

	if cfg.DotenvFile != "" {
		v, err := lookupDotenv(cfg.DotenvFile, cfg.EnvVar)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", cfg.DotenvFile, err)
		} else if v != "" {
			return Credential{Key: v, Source: SourceDotenv}, nil
		}
	}

	if cfg.SecretsDir != "" && cfg.SecretName != "" {
		s, err := Load(cfg.SecretsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else if v := s[cfg.SecretName]; v != "" {
			return Credential{Key: v, Source: SourceSecrets}, nil
		}
	}

	return Credential{}, fmt.Errorf("%w: set %s or add %s=<key> to %s",
		ErrMissingCredential, cfg.EnvVar, cfg.EnvVar, cfg.DotenvFile)
}

// lookupDotenv scans path line by line and returns the value of the first
// line assigning name. A missing file yields an empty value and no error.
func lookupDotenv(path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	prefix := name + "="
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.TrimPrefix(line, "export "), prefix) {
			continue
		}
		env, err := godotenv.Unmarshal(line)
		if err != nil {
			// Lines godotenv rejects (e.g. an unterminated quote) keep the
			// raw text after the first "=".
			return strings.TrimSpace(strings.SplitN(line, "=", 2)[1]), nil
		}
		return strings.TrimSpace(env[name]), nil
	}
	return "", scanner.Err()
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
