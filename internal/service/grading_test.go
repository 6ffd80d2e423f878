package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/cache"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/psa"
	"tcg-inventory-api/internal/quota"
	"tcg-inventory-api/internal/repository"
)

type fakeCertClient struct {
	details   map[string]*psa.CertDetails
	images    map[string][]psa.CertImage
	downloads map[string][]byte
	calls     int
}

func (f *fakeCertClient) GetCertDetails(_ context.Context, cert string) (*psa.CertDetails, error) {
	f.calls++
	if d, ok := f.details[cert]; ok {
		return d, nil
	}
	return nil, &psa.StatusError{StatusCode: 404}
}

func (f *fakeCertClient) GetCertImages(_ context.Context, cert string) ([]psa.CertImage, error) {
	f.calls++
	return f.images[cert], nil
}

func (f *fakeCertClient) DownloadImage(_ context.Context, url string) ([]byte, error) {
	if b, ok := f.downloads[url]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func imagesFor(cert string) []psa.CertImage {
	return []psa.CertImage{
		{IsFrontImage: true, ImageURL: "https://img/" + cert + "/front"},
		{IsFrontImage: false, ImageURL: "https://img/" + cert + "/back"},
	}
}

type gradingFixture struct {
	store    *repository.SQLStore
	client   *fakeCertClient
	svc      *GradingService
	imageDir string
}

func newGradingFixture(t *testing.T, limit int, certs ...string) *gradingFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()

	store, err := repository.NewSQLiteStore(filepath.Join(dir, "inventory.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	slabs := make([]model.Slab, 0, len(certs))
	for _, cert := range certs {
		slabs = append(slabs, model.Slab{
			CertNumber:     cert,
			SetName:        "Mask of Change",
			Grade:          10,
			SubmissionDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			Status:         model.SlabSubmitted,
		})
	}
	_, err = store.InsertNewSlabs(context.Background(), slabs)
	require.NoError(t, err)

	image := bytes.Repeat([]byte{0xff}, MinImageSize)
	client := &fakeCertClient{
		details:   make(map[string]*psa.CertDetails),
		images:    make(map[string][]psa.CertImage),
		downloads: make(map[string][]byte),
	}
	for _, cert := range certs {
		pop, total := 2, 50
		client.details[cert] = &psa.CertDetails{CertNumber: cert, LabelType: "Standard", PopulationHigher: &pop, TotalPopulation: &total}
		client.images[cert] = imagesFor(cert)
		for _, img := range imagesFor(cert) {
			client.downloads[img.ImageURL] = image
		}
	}

	tracker := quota.NewTracker(quota.NewCacheStore(cache.NewMemoryCache(), ""), limit, logger)
	imageDir := filepath.Join(dir, "images")
	svc := NewGradingService(store, client, tracker, imageDir, logger)

	return &gradingFixture{store: store, client: client, svc: svc, imageDir: imageDir}
}

func TestProcessPending(t *testing.T) {
	f := newGradingFixture(t, 100, "1", "2", "3")
	ctx := context.Background()

	delete(f.client.details, "2")
	f.client.downloads["https://img/3/back"] = []byte("tiny")

	run, err := f.svc.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 2, run.Failed)
	assert.Equal(t, 2, run.Remaining)
	assert.Equal(t, 94, run.CallsRemaining)
	assert.Equal(t, []string{"1"}, run.Completed)
	assert.False(t, run.QuotaExhausted)

	slab, err := f.store.GetSlab(ctx, "1")
	require.NoError(t, err)
	assert.True(t, slab.IsComplete())
	assert.Equal(t, filepath.Join(f.imageDir, "1", "1_front.jpg"), slab.FrontImagePath)
	assert.FileExists(t, slab.BackImagePath)

	partial, err := f.store.GetSlab(ctx, "3")
	require.NoError(t, err)
	assert.True(t, partial.PSADetailsFetched)
	assert.NotEmpty(t, partial.FrontImagePath)
	assert.Empty(t, partial.BackImagePath)
	_, err = os.Stat(filepath.Join(f.imageDir, "3", "3_back.jpg"))
	assert.True(t, os.IsNotExist(err))

	promoted, err := f.svc.PromoteReady(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, promoted)

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.Total)
	assert.Equal(t, int64(1), status.Complete)
	assert.Equal(t, []string{"2", "3"}, status.PendingCerts)
	assert.Len(t, status.ProcessedToday, 6)
}

func TestProcessPendingResumesPartialSlab(t *testing.T) {
	f := newGradingFixture(t, 100, "3")
	ctx := context.Background()

	f.client.downloads["https://img/3/back"] = []byte("tiny")
	_, err := f.svc.ProcessPending(ctx)
	require.NoError(t, err)

	f.client.downloads["https://img/3/back"] = bytes.Repeat([]byte{1}, MinImageSize)
	f.client.calls = 0

	run, err := f.svc.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, f.client.calls, "details are not fetched twice")
}

func TestProcessPendingStopsOnQuota(t *testing.T) {
	f := newGradingFixture(t, 3, "1", "2")

	run, err := f.svc.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.True(t, run.QuotaExhausted)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, run.Remaining)
	assert.Equal(t, 1, run.CallsRemaining)
	assert.Equal(t, 2, f.client.calls)
}

func TestProcessPendingWithoutClient(t *testing.T) {
	f := newGradingFixture(t, 100, "1")
	svc := NewGradingService(f.store, nil, quota.NewTracker(quota.NewCacheStore(cache.NewMemoryCache(), ""), 100, zaptest.NewLogger(t)), f.imageDir, zaptest.NewLogger(t))

	_, err := svc.ProcessPending(context.Background())
	assert.ErrorIs(t, err, model.ErrGradingUnconfigured)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, status.CallsRemaining)
}
