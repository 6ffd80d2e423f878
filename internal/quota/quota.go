// Package quota enforces a soft daily cap on grading-service calls.
//
// The cap only stops this process from issuing more than the configured
// number of calls per UTC day. It is not authoritative and does not react to
// rate-limit responses from the remote service.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

// DefaultDailyLimit is the grading service's free-tier call allowance.
const DefaultDailyLimit = 100

// Store persists the quota log.
type Store interface {
	// Load returns the stored log, or an empty one when nothing is stored.
	Load(ctx context.Context) (*model.QuotaLog, error)
	Save(ctx context.Context, log *model.QuotaLog) error
}

// Tracker counts calls per UTC date. The log is re-read on every operation so
// several processes sharing a cache-backed store see each other's calls.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	limit  int
	now    func() time.Time
	logger *zap.Logger
}

// NewTracker creates a tracker. A non-positive limit falls back to DefaultDailyLimit.
func NewTracker(store Store, dailyLimit int, logger *zap.Logger) *Tracker {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Tracker{
		store:  store,
		limit:  dailyLimit,
		now:    time.Now,
		logger: logger.Named("quota"),
	}
}

// DailyLimit returns the configured cap.
func (t *Tracker) DailyLimit() int {
	return t.limit
}

// Remaining returns how many calls may still be made today.
func (t *Tracker) Remaining(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log, today, err := t.load(ctx)
	if err != nil {
		return 0, err
	}
	return max(0, t.limit-log.DailyLogs[today].Calls), nil
}

// RecordCall counts one call made on behalf of certNumber.
func (t *Tracker) RecordCall(ctx context.Context, certNumber string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	log, today, err := t.load(ctx)
	if err != nil {
		return err
	}

	day := log.DailyLogs[today]
	day.Calls++
	day.CertNumbers = append(day.CertNumbers, certNumber)

	if err := t.store.Save(ctx, log); err != nil {
		return fmt.Errorf("failed to save quota log: %w", err)
	}
	t.logger.Debug("grading call recorded", zap.String("cert", certNumber), zap.Int("calls_today", day.Calls))
	return nil
}

// ProcessedToday returns the certificates touched by calls made today.
func (t *Tracker) ProcessedToday(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log, today, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, log.DailyLogs[today].CertNumbers...), nil
}

// load reads the log and rolls it over to the current UTC date, persisting the
// fresh day entry when a rollover happened.
func (t *Tracker) load(ctx context.Context) (*model.QuotaLog, string, error) {
	log, err := t.store.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load quota log: %w", err)
	}
	if log.DailyLogs == nil {
		log.DailyLogs = make(map[string]*model.DailyQuota)
	}

	today := t.now().UTC().Format(model.DateLayout)
	if log.LastReset == nil || *log.LastReset != today {
		log.LastReset = &today
		log.DailyLogs[today] = &model.DailyQuota{CertNumbers: []string{}}
		if err := t.store.Save(ctx, log); err != nil {
			return nil, "", fmt.Errorf("failed to save quota log: %w", err)
		}
		t.logger.Info("quota reset for new day", zap.String("date", today))
	}
	if log.DailyLogs[today] == nil {
		log.DailyLogs[today] = &model.DailyQuota{CertNumbers: []string{}}
	}
	return log, today, nil
}
