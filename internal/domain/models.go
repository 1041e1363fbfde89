package domain

import (
	"encoding/json"
	"time"
)

// Domain contains core models shared across the history journal and publishers.

// Upload kinds.
const (
	KindFile   = "file"
	KindRemote = "remote"
)

// Upload is the record of one completed hosting operation.
type Upload struct {
	Kind        string          `json:"kind"`
	FileName    string          `json:"file_name,omitempty"`
	SizeBytes   int64           `json:"size_bytes,omitempty"`
	Server      string          `json:"server,omitempty"`
	SourceURL   string          `json:"source_url,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}
