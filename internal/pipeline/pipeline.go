// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one flashcard generation from credential lookup to
// the written output file.
//
// A run moves through resolving_credentials, locating_document, extracting,
// chunking, generating and writing to done. Any stage can end the run in
// failed. Failures before a document is known are fatal; later failures stop
// the run without writing output but are not fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/flashcard-engine/internal/cards"
	"github.com/pdiddy/flashcard-engine/internal/chunk"
	"github.com/pdiddy/flashcard-engine/internal/history"
	"github.com/pdiddy/flashcard-engine/internal/locate"
	"github.com/pdiddy/flashcard-engine/internal/output"
	"github.com/pdiddy/flashcard-engine/internal/pdftext"
	"github.com/pdiddy/flashcard-engine/internal/secrets"
	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// ErrNoText is returned when the document yields no extractable text.
var ErrNoText = errors.New("no text extracted")

// ResolveFunc looks up the API key.
type ResolveFunc func(cfg types.CredentialConfig) (secrets.Credential, error)

// BackendFunc builds the completion backend from a resolved key.
type BackendFunc func(ctx context.Context, cfg types.AIConfig, apiKey string) (cards.Backend, error)

// StageError reports the stage a run failed in. Fatal errors are setup
// problems the caller should exit non-zero for.
type StageError struct {
	Stage types.RunState
	Err   error
	Fatal bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result describes where a run ended.
type Result struct {
	RunID      string
	State      types.RunState
	Document   types.Document
	Chunks     int
	OutputPath string
}

// Pipeline holds the configuration and collaborators of a run. Nil
// Resolve, NewBackend and Extractor fall back to the production
// implementations; a nil History disables the run ledger.
type Pipeline struct {
	Config     types.Config
	Resolve    ResolveFunc
	NewBackend BackendFunc
	Selector   locate.DocumentSelector
	Extractor  pdftext.Extractor
	History    history.Recorder
	Out        io.Writer
	Logger     *slog.Logger
}

// run carries the mutable state of one Run call.
type run struct {
	p       *Pipeline
	result  Result
	started time.Time
	failed  types.RunState
	reason  string
}

// Run executes every stage in order. The returned Result is valid even
// when err is non-nil; err is always a *StageError.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.setDefaults()

	r := &run{
		p:       p,
		result:  Result{RunID: uuid.NewString(), State: types.StateIdle},
		started: time.Now(),
	}
	log := p.Logger.With("run", r.result.RunID)

	r.enter(types.StateResolvingCredentials)
	cred, err := p.Resolve(p.Config.Credentials)
	if err != nil {
		return r.fail(err, true)
	}
	log.Info("credential resolved", "source", cred.Source)

	backend, err := p.NewBackend(ctx, p.Config.AI, cred.Key)
	if err != nil {
		return r.fail(fmt.Errorf("creating %s backend: %w", p.Config.AI.Provider, err), true)
	}

	r.enter(types.StateLocatingDocument)
	doc, err := locate.Locate(p.Config.Documents, p.Selector, p.Out)
	if err != nil {
		return r.fail(err, true)
	}
	r.result.Document = doc
	defer r.record(ctx)
	log.Info("document located", "path", doc.Path)

	r.enter(types.StateExtracting)
	text, err := p.Extractor.Extract(doc.Path)
	if err != nil {
		return r.fail(err, false)
	}
	if strings.TrimSpace(text) == "" {
		return r.fail(fmt.Errorf("%w from %s", ErrNoText, doc.Path), false)
	}
	log.Debug("text extracted", "chars", len([]rune(text)))

	r.enter(types.StateChunking)
	chunks, err := chunk.Split(text, chunk.Size)
	if err != nil {
		return r.fail(err, false)
	}
	r.result.Chunks = len(chunks)

	r.enter(types.StateGenerating)
	content, batches, err := cards.Generate(ctx, backend, chunks, p.Out)
	if err != nil {
		return r.fail(err, false)
	}
	log.Debug("cards generated", "batches", len(batches))

	r.enter(types.StateWriting)
	path, err := output.Write(p.Config.Output.Dir, p.Config.Output.FileName, content)
	if err != nil {
		return r.fail(err, false)
	}
	r.result.OutputPath = path

	r.enter(types.StateDone)
	log.Info("flashcards written", "path", path, "chunks", len(chunks))
	return r.result, nil
}

func (p *Pipeline) setDefaults() {
	if p.Resolve == nil {
		p.Resolve = secrets.Resolve
	}
	if p.NewBackend == nil {
		p.NewBackend = cards.NewBackend
	}
	if p.Extractor == nil {
		p.Extractor = pdftext.PDFExtractor{}
	}
	if p.Out == nil {
		p.Out = io.Discard
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
}

func (r *run) enter(state types.RunState) {
	r.p.Logger.Debug("entering state", "run", r.result.RunID, "state", state)
	r.result.State = state
}

func (r *run) fail(err error, fatal bool) (Result, error) {
	stage := r.result.State
	r.failed = stage
	r.reason = err.Error()
	r.result.State = types.StateFailed
	r.result.OutputPath = ""
	return r.result, &StageError{Stage: stage, Err: err, Fatal: fatal}
}

// record writes the run to the ledger. It runs even when ctx was
// cancelled so interrupted runs are still recorded.
func (r *run) record(ctx context.Context) {
	if r.p.History == nil {
		return
	}
	rec := types.RunRecord{
		ID:          r.result.RunID,
		Document:    r.result.Document,
		Chunks:      r.result.Chunks,
		State:       r.result.State,
		FailedStage: r.failed,
		Reason:      r.reason,
		OutputPath:  r.result.OutputPath,
		Model:       r.p.Config.AI.Model,
		StartedAt:   r.started,
		FinishedAt:  time.Now(),
	}
	if err := r.p.History.Record(context.WithoutCancel(ctx), rec); err != nil {
		r.p.Logger.Warn("recording run failed", "run", rec.ID, "error", err)
	}
}
