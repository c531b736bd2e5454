package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Source supplies one finite batch of raw events.
type Source interface {
	Extract(ctx context.Context) ([]event.Raw, error)
}

// FileSource reads a JSON array of raw events from disk, the local
// stand-in for an object-storage drop.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

func (s *FileSource) Extract(ctx context.Context) ([]event.Raw, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var events []event.Raw
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode input file %s: %w", s.path, err)
	}

	s.logger.Info("Batch extracted",
		zap.String("path", s.path),
		zap.Int("records", len(events)),
	)

	return events, nil
}
