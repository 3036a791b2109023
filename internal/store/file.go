package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"classdraw/internal/models"
)

// FileStore writes each collection as a JSON document in Dir.
// A missing file reads as an empty collection.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileStore) load(key string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// save replaces the file through a rename so readers never see a partial write.
func (f *FileStore) save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := f.load(UsersKey, &users)
	return users, err
}

func (f *FileStore) SaveUsers(ctx context.Context, users []models.User) error {
	return f.save(UsersKey, nonNil(users))
}

func (f *FileStore) LoadPrizes(ctx context.Context) ([]models.Prize, error) {
	var prizes []models.Prize
	err := f.load(PrizesKey, &prizes)
	return prizes, err
}

func (f *FileStore) SavePrizes(ctx context.Context, prizes []models.Prize) error {
	return f.save(PrizesKey, nonNil(prizes))
}

func (f *FileStore) LoadRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	var records []models.LotteryRecord
	err := f.load(RecordsKey, &records)
	return records, err
}

func (f *FileStore) SaveRecords(ctx context.Context, records []models.LotteryRecord) error {
	return f.save(RecordsKey, nonNil(records))
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ EntityStore = (*FileStore)(nil)
