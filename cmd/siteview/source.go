package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csdemo/siteview/internal/config"
	"github.com/csdemo/siteview/internal/database"
	"github.com/csdemo/siteview/internal/dataset"
)

// createDatasetSource picks the dataset source named in the config.
func createDatasetSource(cfg config.DatasetConfig, db *database.Manager, logger *slog.Logger) (dataset.Source, error) {
	switch strings.ToLower(cfg.Source) {
	case "", "file":
		return dataset.FileSource{Path: cfg.Path, Logger: logger}, nil
	case "http":
		if cfg.URL == "" {
			return nil, errors.New("dataset source http needs dataset.url")
		}
		return dataset.HTTPSource{URL: cfg.URL, Client: dataset.NewClient(cfg.FetchTimeout)}, nil
	case "database":
		if db == nil {
			return nil, errors.New("dataset source database needs a database connection")
		}
		return database.DocumentSource{Manager: db, DemoFile: cfg.DemoFile}, nil
	default:
		return nil, fmt.Errorf("unknown dataset source: %s", cfg.Source)
	}
}
