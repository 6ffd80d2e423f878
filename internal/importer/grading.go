package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

const gradingColumns = 7

// parseGrade turns a label such as "PSA 10" into 10.
func parseGrade(label string) (int, error) {
	s := strings.TrimSpace(label)
	if len(s) >= 3 && strings.EqualFold(s[:3], "PSA") {
		s = strings.TrimSpace(s[3:])
	}
	grade, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("grade %q: %w", label, err)
	}
	return grade, nil
}

// ImportGrading records new grading submissions. Certificates already stored
// are left untouched, so re-running an export is safe. Each new certificate
// gets an empty directory under the slab directory.
func (im *Importer) ImportGrading(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	logger := im.logger.With(zap.String("import", string(model.ImportGrading)))

	rows, err := im.readRows(r, logger)
	if err != nil {
		return nil, err
	}

	result := model.NewImportResult()
	submitted := model.DateOf(im.now())
	var slabs []model.Slab

	for i, fields := range rows {
		line := i + 2
		result.RowsRead++

		if len(fields) < gradingColumns {
			result.RowsSkipped++
			continue
		}
		for j := range fields {
			fields[j] = strings.Trim(strings.TrimSpace(fields[j]), "'")
		}

		grade, err := parseGrade(fields[5])
		if err != nil {
			logger.Warn("skipping row: parse failure", zap.Int("line", line), zap.Error(err))
			result.RowsSkipped++
			continue
		}
		cert := fields[6]
		if cert == "" {
			logger.Warn("skipping row: missing certificate number", zap.Int("line", line))
			result.RowsSkipped++
			continue
		}
		if !model.ValidCertNumber(cert) {
			logger.Warn("skipping row: malformed certificate number", zap.Int("line", line), zap.String("cert", cert))
			result.RowsSkipped++
			continue
		}

		slabs = append(slabs, model.Slab{
			CertNumber:     cert,
			SetName:        fields[1],
			CardNumber:     fields[2],
			CardName:       fields[3],
			Grade:          grade,
			SubmissionDate: submitted,
			Status:         model.SlabSubmitted,
		})
	}

	inserted, err := im.store.InsertNewSlabs(ctx, slabs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert slabs: %w", err)
	}
	result.RowsImported = len(inserted)
	result.RowsSkipped += len(slabs) - len(inserted)

	for _, cert := range inserted {
		if err := os.MkdirAll(filepath.Join(im.slabDir, cert), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create slab directory for %s: %w", cert, err)
		}
	}

	logger.Info("grading import finished",
		zap.Int("rows", result.RowsRead),
		zap.Int("imported", result.RowsImported),
		zap.Int("skipped", result.RowsSkipped),
	)
	result.Success = true
	return result, nil
}
