package publishers

import (
	"time"

	"github.com/horacebramwell/voe-go/internal/domain"
)

// Event represents the payload published downstream after an upload completes.
type Event struct {
	Source      string        `json:"source"`
	Upload      domain.Upload `json:"upload"`
	PublishedAt time.Time     `json:"published_at"`
}

// NewEvent constructs an Event for the given source + upload.
func NewEvent(source string, up domain.Upload) Event {
	return Event{
		Source:      source,
		Upload:      up,
		PublishedAt: time.Now().UTC(),
	}
}
