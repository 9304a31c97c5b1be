package dto

import "time"

type TranscriptFileResponse struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Ingested   bool      `json:"ingested"`
	IngestedAt string    `json:"ingestedAt,omitempty"`
}

type RescanResponse struct {
	Queued int `json:"queued"`
}

type ReingestRequest struct {
	Filename string `json:"filename" validate:"required"`
	Force    bool   `json:"force"`
}

type ReingestResponse struct {
	Added int `json:"added"`
}

// IngestFileMessage is the payload published on the ingest event bus by
// the transcript flush and the background scanner.
type IngestFileMessage struct {
	Path      string `json:"path"`
	SessionId string `json:"sessionId,omitempty"`
	Source    string `json:"source"`
}
