package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/pkg/fsutil"
)

// FileDocumentRepository stores the inventory document as an indented JSON file.
type FileDocumentRepository struct {
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// NewFileDocumentRepository creates a repository writing to path.
func NewFileDocumentRepository(path string, logger *zap.Logger) (*FileDocumentRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &FileDocumentRepository{
		path:   path,
		now:    time.Now,
		logger: logger.Named("document").With(zap.String("path", path)),
	}, nil
}

// Load reads the document, returning a new one when the file does not exist yet.
func (r *FileDocumentRepository) Load(ctx context.Context) (*model.InventoryDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewInventoryDocument(r.now()), nil
		}
		return nil, fmt.Errorf("failed to read inventory document: %w", err)
	}

	var doc model.InventoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse inventory document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// Save stamps and writes the document. The file is replaced atomically.
func (r *FileDocumentRepository) Save(ctx context.Context, doc *model.InventoryDocument) error {
	doc.Metadata.LastUpdated = r.now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode inventory document: %w", err)
	}

	if err := fsutil.WriteFileAtomic(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save inventory document: %w", err)
	}

	r.logger.Debug("inventory document saved", zap.Int("bytes", len(data)))
	return nil
}

func (r *FileDocumentRepository) Close() error {
	return nil
}

var _ DocumentRepository = (*FileDocumentRepository)(nil)
