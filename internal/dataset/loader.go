package dataset

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/csdemo/siteview/pkg/core"
)

// maxDocumentSize bounds how much of a dataset source is read.
const maxDocumentSize = 256 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// Decode parses a dataset document, gunzipping it first when it is compressed.
func Decode(data []byte) (*core.DemoDataset, *Report, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &Report{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		data, err = io.ReadAll(io.LimitReader(zr, maxDocumentSize))
		if err != nil {
			return nil, &Report{}, fmt.Errorf("failed to decompress dataset: %w", err)
		}
	}
	return Parse(data)
}

// LoadFile reads a dataset from disk. A missing, unreadable or corrupt file
// yields an empty dataset; the cause is logged and kept in the report.
func LoadFile(path string, logger *slog.Logger) (*core.DemoDataset, *Report) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return substituteEmpty(logger, path, fmt.Errorf("failed to read dataset file: %w", err))
	}

	ds, report, err := Decode(data)
	if err != nil {
		return substituteEmpty(logger, path, err)
	}

	logQuarantine(logger, path, report)
	return ds, report
}

func substituteEmpty(logger *slog.Logger, path string, cause error) (*core.DemoDataset, *Report) {
	logger.Warn("Dataset unavailable, using empty dataset", "path", path, "error", cause)
	return core.EmptyDataset(), &Report{Cause: cause.Error()}
}

func logQuarantine(logger *slog.Logger, source string, report *Report) {
	if report.NonFinite > 0 {
		logger.Warn("Non-finite numbers replaced in dataset", "source", source, "count", report.NonFinite)
	}
	for _, issue := range report.Issues {
		logger.Warn("Quarantined dataset record", "source", source, "path", issue.Path, "reason", issue.Reason)
	}
	logger.Info("Dataset loaded",
		"source", source,
		"rounds", report.Rounds,
		"players", report.Players,
		"journeyPoints", report.JourneyPoints,
		"quarantined", report.Quarantined(),
	)
}
