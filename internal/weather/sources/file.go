package sources

import (
	"context"
	"fmt"
	"os"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// FileSource implements weather.Source for a CSV on local disk.
type FileSource struct {
	path string
}

var _ weather.Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Load(ctx context.Context) ([]weather.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	observations, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return observations, nil
}
