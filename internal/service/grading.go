package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/psa"
	"tcg-inventory-api/internal/repository"
)

// Grading workflow limits.
const (
	// MinImageSize is the smallest download accepted as a real image.
	MinImageSize = 1000

	// callsPerCert is the quota a certificate may consume in one pass.
	callsPerCert = 2
)

// CertClient is the grading-service API used by the processing loop.
type CertClient interface {
	GetCertDetails(ctx context.Context, certNumber string) (*psa.CertDetails, error)
	GetCertImages(ctx context.Context, certNumber string) ([]psa.CertImage, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// QuotaTracker counts grading-service calls against the daily limit.
type QuotaTracker interface {
	DailyLimit() int
	Remaining(ctx context.Context) (int, error)
	RecordCall(ctx context.Context, certNumber string) error
	ProcessedToday(ctx context.Context) ([]string, error)
}

var _ CertClient = (*psa.Client)(nil)

// GradingService fetches certificate data and images for submitted slabs.
type GradingService struct {
	slabs    repository.SlabRepository
	client   CertClient
	quota    QuotaTracker
	imageDir string
	logger   *zap.Logger
}

// NewGradingService creates a new grading service. A nil client leaves the
// service able to report status but not to process certificates.
func NewGradingService(slabs repository.SlabRepository, client CertClient, quota QuotaTracker, imageDir string, logger *zap.Logger) *GradingService {
	return &GradingService{
		slabs:    slabs,
		client:   client,
		quota:    quota,
		imageDir: imageDir,
		logger:   logger.Named("grading"),
	}
}

// Status reports grading progress and today's quota usage.
func (s *GradingService) Status(ctx context.Context) (*model.GradingStatus, error) {
	stats, err := s.slabs.SlabStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get slab stats: %w", err)
	}
	pending, err := s.slabs.PendingSlabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending slabs: %w", err)
	}
	remaining, err := s.quota.Remaining(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}
	processed, err := s.quota.ProcessedToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}

	status := &model.GradingStatus{
		SlabStats:      stats,
		CallsRemaining: remaining,
		DailyLimit:     s.quota.DailyLimit(),
		PendingCerts:   make([]string, 0, len(pending)),
		ProcessedToday: processed,
	}
	for _, slab := range pending {
		status.PendingCerts = append(status.PendingCerts, slab.CertNumber)
	}
	return status, nil
}

// ProcessPending works through pending slabs until they or the quota run out.
func (s *GradingService) ProcessPending(ctx context.Context) (*model.GradingRun, error) {
	if s.client == nil {
		return nil, model.ErrGradingUnconfigured
	}

	pending, err := s.slabs.PendingSlabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending slabs: %w", err)
	}

	run := &model.GradingRun{Completed: []string{}}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining, err := s.quota.Remaining(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read quota: %w", err)
		}
		if remaining < callsPerCert {
			s.logger.Warn("daily quota exhausted", zap.Int("remaining", remaining))
			run.QuotaExhausted = true
			break
		}

		slab := &pending[i]
		if s.processSlab(ctx, slab) {
			run.Processed++
			run.Completed = append(run.Completed, slab.CertNumber)
		} else {
			run.Failed++
		}
	}

	run.Remaining = len(pending) - run.Processed
	if run.CallsRemaining, err = s.quota.Remaining(ctx); err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}

	s.logger.Info("grading run finished",
		zap.Int("processed", run.Processed),
		zap.Int("failed", run.Failed),
		zap.Int("remaining", run.Remaining),
		zap.Int("calls_remaining", run.CallsRemaining),
	)
	return run, nil
}

// processSlab fetches whatever the slab is missing and reports whether it is
// now complete.
func (s *GradingService) processSlab(ctx context.Context, slab *model.Slab) bool {
	logger := s.logger.With(zap.String("cert", slab.CertNumber))

	detailsOK := slab.PSADetailsFetched
	if !detailsOK {
		details, err := s.client.GetCertDetails(ctx, slab.CertNumber)
		s.recordCall(ctx, slab.CertNumber)
		if err != nil {
			logger.Warn("failed to fetch certificate details", zap.Error(err))
		} else if err := s.slabs.SaveSlabDetails(ctx, slab.CertNumber, model.SlabDetails{
			PopHigher: details.PopulationHigher,
			TotalPop:  details.TotalPopulation,
			LabelType: details.LabelType,
		}); err != nil {
			logger.Error("failed to save certificate details", zap.Error(err))
		} else {
			detailsOK = true
		}
	}

	if slab.HasImages() {
		return detailsOK
	}

	images, err := s.client.GetCertImages(ctx, slab.CertNumber)
	s.recordCall(ctx, slab.CertNumber)
	if err != nil {
		logger.Warn("failed to fetch certificate images", zap.Error(err))
		return false
	}

	front, back := slab.FrontImagePath, slab.BackImagePath
	for _, img := range images {
		side := "back"
		if img.IsFrontImage {
			side = "front"
		}
		if (img.IsFrontImage && front != "") || (!img.IsFrontImage && back != "") {
			continue
		}

		path, err := s.saveImage(ctx, slab.CertNumber, side, img.ImageURL)
		if err != nil {
			logger.Warn("failed to download image", zap.String("side", side), zap.Error(err))
			continue
		}
		if img.IsFrontImage {
			front = path
		} else {
			back = path
		}
	}

	if front != slab.FrontImagePath || back != slab.BackImagePath {
		if err := s.slabs.SetSlabImages(ctx, slab.CertNumber, front, back); err != nil {
			logger.Error("failed to save image paths", zap.Error(err))
			return false
		}
	}
	return detailsOK && front != "" && back != ""
}

func (s *GradingService) saveImage(ctx context.Context, certNumber, side, url string) (string, error) {
	if !model.ValidCertNumber(certNumber) {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidCertNumber, certNumber)
	}
	data, err := s.client.DownloadImage(ctx, url)
	if err != nil {
		return "", err
	}
	if len(data) < MinImageSize {
		return "", fmt.Errorf("image too small: %d bytes", len(data))
	}

	dir := filepath.Join(s.imageDir, certNumber)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.jpg", certNumber, side))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func (s *GradingService) recordCall(ctx context.Context, certNumber string) {
	if err := s.quota.RecordCall(ctx, certNumber); err != nil {
		s.logger.Error("failed to record quota call", zap.String("cert", certNumber), zap.Error(err))
	}
}

// PromoteReady moves complete Submitted slabs to Ready.
func (s *GradingService) PromoteReady(ctx context.Context) ([]string, error) {
	certs, err := s.slabs.PromoteReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to promote slabs: %w", err)
	}
	s.logger.Info("slabs promoted to ready", zap.Int("count", len(certs)))
	return certs, nil
}
