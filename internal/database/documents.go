package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/csdemo/siteview/internal/dataset"
	"github.com/csdemo/siteview/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrDocumentNotFound is returned when no stored document matches
var ErrDocumentNotFound = errors.New("dataset document not found")

// DatasetDocument is one analysis document stored by the pipeline.
type DatasetDocument struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	DemoFile  string         `gorm:"size:255;uniqueIndex" json:"demoFile"`
	Map       string         `gorm:"size:64;index" json:"map"`
	Document  datatypes.JSON `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (DatasetDocument) TableName() string {
	return "dataset_documents"
}

// LoadDocument fetches the document for demoFile, or the newest one when demoFile is empty.
func (m *Manager) LoadDocument(ctx context.Context, demoFile string) (*DatasetDocument, error) {
	var doc DatasetDocument
	q := m.DB.WithContext(ctx)
	if demoFile != "" {
		q = q.Where("demo_file = ?", demoFile)
	}
	err := q.Order("created_at desc").Order("id desc").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, demoFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns stored document headers, newest first.
func (m *Manager) ListDocuments(ctx context.Context) ([]DatasetDocument, error) {
	var docs []DatasetDocument
	err := m.DB.WithContext(ctx).
		Select("id", "demo_file", "map", "created_at").
		Order("created_at desc").Order("id desc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset documents: %w", err)
	}
	return docs, nil
}

// DocumentSource loads the dataset from the document store.
type DocumentSource struct {
	Manager  *Manager
	DemoFile string
}

func (s DocumentSource) Name() string {
	if s.DemoFile == "" {
		return "database:latest"
	}
	return "database:" + s.DemoFile
}

func (s DocumentSource) Load(ctx context.Context) (*core.DemoDataset, *dataset.Report, error) {
	doc, err := s.Manager.LoadDocument(ctx, s.DemoFile)
	if err != nil {
		return nil, nil, err
	}
	ds, report, err := dataset.Decode([]byte(doc.Document))
	if err != nil {
		return nil, report, fmt.Errorf("document %d: %w", doc.ID, err)
	}
	if ds.Metadata.DemoFile == "" {
		ds.Metadata.DemoFile = doc.DemoFile
	}
	if ds.Metadata.Map == "" {
		ds.Metadata.Map = doc.Map
	}
	return ds, report, nil
}
