// Package store persists the three lottery collections: users, prizes and
// draw records. Every backend loads and saves whole collections; there is no
// partial update primitive.
package store

import (
	"context"
	"fmt"
	"sync"

	"classdraw/internal/models"

	"github.com/google/logger"
)

// Collection keys. The file and Redis backends use them verbatim.
const (
	UsersKey   = "lottery_users"
	PrizesKey  = "lottery_prizes"
	RecordsKey = "lottery_records"
)

// EntityStore is the durable home of users, prizes and records.
type EntityStore interface {
	LoadUsers(ctx context.Context) ([]models.User, error)
	SaveUsers(ctx context.Context, users []models.User) error
	LoadPrizes(ctx context.Context) ([]models.Prize, error)
	SavePrizes(ctx context.Context, prizes []models.Prize) error
	LoadRecords(ctx context.Context) ([]models.LotteryRecord, error)
	SaveRecords(ctx context.Context, records []models.LotteryRecord) error
}

// Seed populates an empty store with the prize catalog and the administrator.
// Collections that already hold data are left alone.
func Seed(ctx context.Context, s EntityStore, catalog []models.Prize, admin models.User) error {
	prizes, err := s.LoadPrizes(ctx)
	if err != nil {
		return fmt.Errorf("seed: load prizes: %w", err)
	}
	if len(prizes) == 0 {
		if err := s.SavePrizes(ctx, catalog); err != nil {
			return fmt.Errorf("seed: save prizes: %w", err)
		}
		logger.Infof("Seeded prize catalog with %d prizes", len(catalog))
	}

	users, err := s.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: load users: %w", err)
	}
	if len(users) == 0 {
		if err := s.SaveUsers(ctx, []models.User{admin}); err != nil {
			return fmt.Errorf("seed: save users: %w", err)
		}
		logger.Infof("Seeded administrator %s", admin.StudentID)
	}
	return nil
}

// MemoryStore keeps the collections in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []models.User
	prizes  []models.Prize
	records []models.LotteryRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.User(nil), m.users...), nil
}

func (m *MemoryStore) SaveUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]models.User(nil), users...)
	return nil
}

func (m *MemoryStore) LoadPrizes(ctx context.Context) ([]models.Prize, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Prize(nil), m.prizes...), nil
}

func (m *MemoryStore) SavePrizes(ctx context.Context, prizes []models.Prize) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prizes = append([]models.Prize(nil), prizes...)
	return nil
}

func (m *MemoryStore) LoadRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.LotteryRecord(nil), m.records...), nil
}

func (m *MemoryStore) SaveRecords(ctx context.Context, records []models.LotteryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.LotteryRecord(nil), records...)
	return nil
}

var _ EntityStore = (*MemoryStore)(nil)
