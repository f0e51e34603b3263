// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document is the input PDF selected for a run.
type Document struct {
	// Name is the file name without directory (e.g. "Global Business - Unit 2.pdf").
	Name string `json:"name" yaml:"name"`

	// Path is the file-system path used to open the PDF.
	Path string `json:"path" yaml:"path"`
}

// Chunk is a contiguous slice of the extracted text. Index is zero-based
// and chunks are processed in Index order.
type Chunk struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// FlashcardBatch is the raw model output for one chunk. The text is not
// validated; the question;answer layout is only requested in the prompt.
type FlashcardBatch struct {
	ChunkIndex int    `json:"chunk_index" yaml:"chunk_index"`
	Text       string `json:"text" yaml:"text"`
}

// RunState is a state of the flashcard run state machine.
type RunState string

const (
	StateIdle                 RunState = "idle"
	StateResolvingCredentials RunState = "resolving_credentials"
	StateLocatingDocument     RunState = "locating_document"
	StateExtracting           RunState = "extracting"
	StateChunking             RunState = "chunking"
	StateGenerating           RunState = "generating"
	StateWriting              RunState = "writing"
	StateDone                 RunState = "done"
	StateFailed               RunState = "failed"
)

// RunRecord is one entry of the run ledger.
type RunRecord struct {
	// ID is a random UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	Document Document `json:"document" yaml:"document"`

	// Chunks is the number of chunks the extracted text was split into.
	Chunks int `json:"chunks" yaml:"chunks"`

	// State is the final state: done or failed.
	State RunState `json:"state" yaml:"state"`

	// FailedStage is the state the run was in when it failed.
	FailedStage RunState `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`

	// Reason is the failure message; empty on success.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// OutputPath is the written flashcard file; empty unless State is done.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	Model string `json:"model" yaml:"model"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}
