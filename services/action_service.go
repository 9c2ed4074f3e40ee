package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/utils"
)

const (
	actionCacheKey = "cache:actions:catalog"
	// ActionCacheTTL bounds how long the catalog may be served without a
	// database read. The action set rarely changes.
	ActionCacheTTL = 24 * time.Hour
)

// KV is the byte-valued cache the catalog is stored in. Both operations are
// best-effort: a failed read is a miss and a failed write is dropped, so
// cache trouble is never user-visible.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// cacheEntry is the stored envelope; CachedAt drives the freshness check so
// a stale or corrupt entry reads as a miss.
type cacheEntry struct {
	Data     []models.Action `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// ActionService reads the action catalog through a time-limited cache.
type ActionService struct {
	db  *gorm.DB
	kv  KV
	now func() time.Time
}

// NewActionService creates an ActionService. kv may be nil, in which case
// every read goes to the database.
func NewActionService(db *gorm.DB, kv KV) *ActionService {
	return &ActionService{db: db, kv: kv, now: time.Now}
}

// GetActions returns the full catalog ordered by level ascending. A cache
// entry younger than ActionCacheTTL is returned without touching the
// database; otherwise a single read is issued and its result written back
// with a fresh timestamp.
func (s *ActionService) GetActions(ctx context.Context) ([]models.Action, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	var actions []models.Action
	if err := s.db.WithContext(ctx).Order("level").Find(&actions).Error; err != nil {
		return nil, err
	}

	s.writeCache(ctx, actions)
	return actions, nil
}

func (s *ActionService) readCache(ctx context.Context) ([]models.Action, bool) {
	if s.kv == nil {
		return nil, false
	}
	raw, ok := s.kv.Get(ctx, actionCacheKey)
	if !ok {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt payloads count as a miss.
		if utils.Sugar != nil {
			utils.Sugar.Debugf("action cache corrupt, refetching: %v", err)
		}
		return nil, false
	}
	if s.now().Sub(entry.CachedAt) > ActionCacheTTL {
		return nil, false
	}
	return entry.Data, true
}

func (s *ActionService) writeCache(ctx context.Context, actions []models.Action) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(cacheEntry{Data: actions, CachedAt: s.now()})
	if err != nil {
		return
	}
	s.kv.Set(ctx, actionCacheKey, raw, ActionCacheTTL)
}
