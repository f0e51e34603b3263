// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flashcard-engine/internal/cards"
	"github.com/pdiddy/flashcard-engine/internal/history"
	"github.com/pdiddy/flashcard-engine/internal/locate"
	"github.com/pdiddy/flashcard-engine/internal/secrets"
	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// --- test doubles ---

type fakeExtractor struct {
	text  string
	err   error
	paths []string
}

func (f *fakeExtractor) Extract(path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.text, f.err
}

// echoBackend answers each request with "cards-N" and can fail on call failOn.
type echoBackend struct {
	failOn int
	users  []string
}

func (b *echoBackend) Complete(_ context.Context, req cards.Request) (string, error) {
	b.users = append(b.users, req.User)
	if len(b.users) == b.failOn {
		return "", errors.New("server error")
	}
	return fmt.Sprintf("cards-%d", len(b.users)), nil
}

type fixedSelector string

func (s fixedSelector) Select([]types.Document) (string, error) { return string(s), nil }

type memoryRecorder struct {
	records []types.RunRecord
}

func (m *memoryRecorder) Record(_ context.Context, rec types.RunRecord) error {
	m.records = append(m.records, rec)
	return nil
}

type harness struct {
	pipeline  *Pipeline
	extractor *fakeExtractor
	backend   *echoBackend
	history   *memoryRecorder
	built     int
	outPath   string
}

// newHarness sets up a source directory holding the default PDF and a
// pipeline wired to fakes.
func newHarness(t *testing.T, text string) *harness {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "SOURCE_DOCUMENTS")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "unit.pdf"), []byte("%PDF"), 0o644))

	h := &harness{
		extractor: &fakeExtractor{text: text},
		backend:   &echoBackend{},
		history:   &memoryRecorder{},
		outPath:   filepath.Join(root, "out", "flashcards.txt"),
	}
	h.pipeline = &Pipeline{
		Config: types.Config{
			Credentials: types.CredentialConfig{EnvVar: "AIMLAPI_KEY"},
			Documents:   types.DocumentConfig{SourceDir: src, DefaultName: "unit.pdf"},
			Output:      types.OutputConfig{Dir: filepath.Join(root, "out"), FileName: "flashcards.txt"},
			AI:          types.AIConfig{Provider: types.ProviderOpenAI, Model: "gpt-3.5-turbo"},
			LogLevel:    "info",
		},
		Resolve: func(types.CredentialConfig) (secrets.Credential, error) {
			return secrets.Credential{Key: "k", Source: secrets.SourceEnv}, nil
		},
		NewBackend: func(_ context.Context, _ types.AIConfig, key string) (cards.Backend, error) {
			h.built++
			assert.Equal(t, "k", key)
			return h.backend, nil
		},
		Selector:  fixedSelector(""),
		Extractor: h.extractor,
		History:   h.history,
		Out:       &bytes.Buffer{},
	}
	return h
}

func (h *harness) assertNoOutput(t *testing.T) {
	t.Helper()
	_, err := os.Stat(h.outPath)
	assert.True(t, os.IsNotExist(err), "output file must not exist")
}

func requireStageError(t *testing.T, err error, stage types.RunState, fatal bool) *StageError {
	t.Helper()
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, stage, se.Stage)
	assert.Equal(t, fatal, se.Fatal)
	return se
}

// --- tests ---

func TestRun_EndToEnd(t *testing.T) {
	text := strings.Repeat("a", 1000) + strings.Repeat("b", 1000) + strings.Repeat("c", 500)
	h := newHarness(t, text)

	res, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.StateDone, res.State)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, "unit.pdf", res.Document.Name)
	assert.Equal(t, h.outPath, res.OutputPath)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	require.Len(t, h.backend.users, 3)
	assert.True(t, strings.HasSuffix(h.backend.users[0], " "+strings.Repeat("a", 1000)))
	assert.True(t, strings.HasSuffix(h.backend.users[1], " "+strings.Repeat("b", 1000)))
	assert.True(t, strings.HasSuffix(h.backend.users[2], " "+strings.Repeat("c", 500)))

	data, err := os.ReadFile(h.outPath)
	require.NoError(t, err)
	assert.Equal(t, "cards-1\n\ncards-2\n\ncards-3\n\n", string(data))

	require.Len(t, h.history.records, 1)
	rec := h.history.records[0]
	assert.Equal(t, res.RunID, rec.ID)
	assert.Equal(t, types.StateDone, rec.State)
	assert.Equal(t, 3, rec.Chunks)
	assert.Equal(t, h.outPath, rec.OutputPath)
	assert.Empty(t, rec.FailedStage)
	assert.Equal(t, "gpt-3.5-turbo", rec.Model)
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))
}

func TestRun_MissingCredential(t *testing.T) {
	h := newHarness(t, "some text")
	h.pipeline.Resolve = func(types.CredentialConfig) (secrets.Credential, error) {
		return secrets.Credential{}, secrets.ErrMissingCredential
	}

	res, err := h.pipeline.Run(context.Background())
	requireStageError(t, err, types.StateResolvingCredentials, true)
	assert.ErrorIs(t, err, secrets.ErrMissingCredential)

	assert.Equal(t, types.StateFailed, res.State)
	assert.Zero(t, h.built, "no backend is constructed")
	assert.Empty(t, h.extractor.paths)
	assert.Empty(t, h.history.records, "runs without a document are not recorded")
	h.assertNoOutput(t)
}

func TestRun_MissingCredentialLeavesNoLedger(t *testing.T) {
	h := newHarness(t, "some text")
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ledger := history.NewLazyStore(dbPath)
	defer ledger.Close()
	h.pipeline.History = ledger
	h.pipeline.Resolve = func(types.CredentialConfig) (secrets.Credential, error) {
		return secrets.Credential{}, secrets.ErrMissingCredential
	}

	_, err := h.pipeline.Run(context.Background())
	requireStageError(t, err, types.StateResolvingCredentials, true)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "no ledger file is written")
}

func TestRun_BackendConstructionFails(t *testing.T) {
	h := newHarness(t, "some text")
	h.pipeline.NewBackend = func(context.Context, types.AIConfig, string) (cards.Backend, error) {
		return nil, cards.ErrUnknownProvider
	}

	_, err := h.pipeline.Run(context.Background())
	requireStageError(t, err, types.StateResolvingCredentials, true)
	assert.ErrorIs(t, err, cards.ErrUnknownProvider)
	h.assertNoOutput(t)
}

func TestRun_ExtractionFailures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		wantErr error
	}{
		{name: "extractor error", err: errors.New("malformed xref"), wantErr: nil},
		{name: "empty text", text: "", wantErr: ErrNoText},
		{name: "whitespace only", text: " \n\t ", wantErr: ErrNoText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.text)
			h.extractor.err = tt.err

			res, err := h.pipeline.Run(context.Background())
			requireStageError(t, err, types.StateExtracting, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}

			assert.Equal(t, types.StateFailed, res.State)
			assert.Empty(t, h.backend.users, "backend is never invoked")
			h.assertNoOutput(t)

			require.Len(t, h.history.records, 1)
			assert.Equal(t, types.StateExtracting, h.history.records[0].FailedStage)
		})
	}
}

func TestRun_GenerationFailsMidway(t *testing.T) {
	h := newHarness(t, strings.Repeat("x", 2500))
	h.backend.failOn = 2

	res, err := h.pipeline.Run(context.Background())
	requireStageError(t, err, types.StateGenerating, false)

	var ce *cards.ChunkError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Index)

	assert.Equal(t, types.StateFailed, res.State)
	assert.Equal(t, 3, res.Chunks)
	assert.Empty(t, res.OutputPath)
	assert.Len(t, h.backend.users, 2, "chunk 3 is never sent")
	h.assertNoOutput(t)

	require.Len(t, h.history.records, 1)
	rec := h.history.records[0]
	assert.Equal(t, types.StateFailed, rec.State)
	assert.Equal(t, types.StateGenerating, rec.FailedStage)
	assert.Contains(t, rec.Reason, "chunk 2/3")
}

func TestRun_SelectsWhenDefaultMissing(t *testing.T) {
	h := newHarness(t, "short text")
	src := h.pipeline.Config.Documents.SourceDir
	require.NoError(t, os.Rename(filepath.Join(src, "unit.pdf"), filepath.Join(src, "lecture.pdf")))
	h.pipeline.Selector = fixedSelector("1")

	res, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lecture.pdf", res.Document.Name)
	assert.Equal(t, []string{filepath.Join(src, "lecture.pdf")}, h.extractor.paths)
	assert.Equal(t, 1, res.Chunks)
}

func TestRun_LocateFailuresAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		choice  string
		wantErr error
	}{
		{name: "no documents", wantErr: locate.ErrNoDocuments},
		{name: "bad selection", files: []string{"a.pdf"}, choice: "7", wantErr: locate.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "text")
			src := h.pipeline.Config.Documents.SourceDir
			require.NoError(t, os.Remove(filepath.Join(src, "unit.pdf")))
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(src, f), nil, 0o644))
			}
			h.pipeline.Selector = fixedSelector(tt.choice)

			res, err := h.pipeline.Run(context.Background())
			requireStageError(t, err, types.StateLocatingDocument, true)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, types.StateFailed, res.State)
			assert.Empty(t, h.extractor.paths)
			assert.Empty(t, h.backend.users)
			assert.Empty(t, h.history.records)
		})
	}
}

func TestRun_WithoutHistory(t *testing.T) {
	h := newHarness(t, "text")
	h.pipeline.History = nil

	res, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StateDone, res.State)
}

func TestStageError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&StageError{Stage: types.StateWriting, Err: inner})

	assert.Equal(t, "writing: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
