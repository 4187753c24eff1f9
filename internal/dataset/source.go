package dataset

import (
	"context"
	"log/slog"

	"github.com/csdemo/siteview/pkg/core"
)

// Source produces a dataset once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) (*core.DemoDataset, *Report, error)
}

// FileSource reads a local file and never fails; see LoadFile.
type FileSource struct {
	Path   string
	Logger *slog.Logger
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(_ context.Context) (*core.DemoDataset, *Report, error) {
	ds, report := LoadFile(s.Path, s.Logger)
	return ds, report, nil
}

// HTTPSource fetches the dataset from a URL. Failures surface as errors.
type HTTPSource struct {
	URL    string
	Client *Client
}

func (s HTTPSource) Name() string { return "http:" + s.URL }

func (s HTTPSource) Load(ctx context.Context) (*core.DemoDataset, *Report, error) {
	client := s.Client
	if client == nil {
		client = NewClient(0)
	}
	return client.Fetch(ctx, s.URL)
}
