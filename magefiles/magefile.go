//go:build mage

// Package main contains Mage build targets for flashcard-engine developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir    = "bin"
	binName   = "flashcard-engine"
	cmdPkg    = "./cmd/flashcard-engine"
	sourceDir = "SOURCE_DOCUMENTS"
)

// Init creates the directory the CLI reads input PDFs from.
func Init() error {
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sourceDir, err)
	}
	fmt.Println("  ", sourceDir)
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/ with the version stamped from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet runs go vet on every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check vets and tests the module, then builds the binary.
func Check() {
	mg.SerialDeps(Vet, Test, Build)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// gitVersion returns `git describe` output, or "dev" outside a repository.
func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// skipDir reports directories the go tool ignores (leading "." or "_").
func skipDir(path string, info os.FileInfo) bool {
	name := info.Name()
	return path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_"))
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(path, info) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in .md and .yaml files outside ignored directories.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(path, info) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
