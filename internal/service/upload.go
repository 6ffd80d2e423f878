package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/importer"
	"tcg-inventory-api/internal/model"
)

// UploadService keeps a timestamped copy of each uploaded CSV and imports it.
type UploadService struct {
	importer  *importer.Importer
	importDir string
	now       func() time.Time
	logger    *zap.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(im *importer.Importer, importDir string, logger *zap.Logger) *UploadService {
	return &UploadService{
		importer:  im,
		importDir: importDir,
		now:       time.Now,
		logger:    logger.Named("upload"),
	}
}

// Upload stores r under the import directory and runs the importer for kind.
func (s *UploadService) Upload(ctx context.Context, kind model.ImportType, filename string, r io.Reader) (*model.ImportResult, error) {
	path, err := s.store(filename, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload stored", zap.String("type", string(kind)), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return s.importer.Import(ctx, kind, f)
}

// maxUploadSuffix bounds the numbered names tried when uploads share a second.
const maxUploadSuffix = 100

// importPath returns <import_dir>/<base>_<YYYYmmdd_HHMMSS><ext>, with _<n>
// before the extension when n is positive.
func (s *UploadService) importPath(filename string, stamp time.Time, n int) string {
	name := filepath.Base(filename)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	if ext == "" {
		ext = ".csv"
	}
	name = fmt.Sprintf("%s_%s", base, stamp.Format("20060102_150405"))
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	return filepath.Join(s.importDir, name+ext)
}

func (s *UploadService) store(filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.importDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create import directory: %w", err)
	}

	path, f, err := s.create(filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// create opens a new archive file, never truncating an earlier upload.
func (s *UploadService) create(filename string) (string, *os.File, error) {
	stamp := s.now()
	for n := 0; n < maxUploadSuffix; n++ {
		path := s.importPath(filename, stamp, n)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("failed to create upload file: %w", err)
		}
	}
	return "", nil, fmt.Errorf("failed to create upload file: too many uploads of %s", filepath.Base(filename))
}
