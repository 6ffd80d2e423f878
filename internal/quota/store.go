package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"tcg-inventory-api/internal/cache"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/pkg/fsutil"
)

// FileStore keeps the quota log in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*model.QuotaLog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewQuotaLog(), nil
		}
		return nil, err
	}

	log := model.NewQuotaLog()
	if err := json.Unmarshal(data, log); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return log, nil
}

func (s *FileStore) Save(ctx context.Context, log *model.QuotaLog) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.path, data, 0o644)
}

// DefaultCacheKey is where CacheStore keeps the log.
const DefaultCacheKey = "psa:quota"

// CacheStore keeps the quota log under one cache key without expiry.
type CacheStore struct {
	cache cache.Cache
	key   string
}

func NewCacheStore(c cache.Cache, key string) *CacheStore {
	if key == "" {
		key = DefaultCacheKey
	}
	return &CacheStore{cache: c, key: key}
}

func (s *CacheStore) Load(ctx context.Context) (*model.QuotaLog, error) {
	data, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return model.NewQuotaLog(), nil
		}
		return nil, err
	}

	log := model.NewQuotaLog()
	if err := json.Unmarshal(data, log); err != nil {
		return nil, fmt.Errorf("failed to parse cached quota log: %w", err)
	}
	return log, nil
}

func (s *CacheStore) Save(ctx context.Context, log *model.QuotaLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key, data, 0)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*CacheStore)(nil)
)
