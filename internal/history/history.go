package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/horacebramwell/voe-go/internal/domain"
)

// Package history keeps a local journal of completed uploads.

// Store records uploads and lists them back, newest first.
type Store interface {
	Close() error
	RecordUpload(up domain.Upload) error
	RecentUploads(limit int) ([]domain.Upload, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 90 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultRecentLimit     = 20
)

// NewStore creates the configured journal backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt history requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported history type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                               { return nil }
func (noopStore) RecordUpload(domain.Upload) error           { return nil }
func (noopStore) RecentUploads(int) ([]domain.Upload, error) { return nil, nil }
