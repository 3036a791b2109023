package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"classdraw/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []models.Prize{
	{ID: 1, Name: "一等奖", Description: "神秘大奖", Level: 1, Remaining: 1},
	{ID: 2, Name: "二等奖", Description: "精美礼品", Level: 2, Remaining: 3},
	{ID: 3, Name: "三等奖", Description: "纪念奖品", Level: 3, Remaining: 5},
}

var testAdmin = models.User{ID: "admin-1", StudentID: "admin", Name: "Administrator", IsAdmin: true}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func sampleRecords() []models.LotteryRecord {
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return []models.LotteryRecord{
		{ID: "r1", UserID: "u1", StudentID: "S1", UserName: "Alice", Timestamp: ts, Won: false},
		{ID: "r2", UserID: "u2", StudentID: "S2", UserName: "Bob", PrizeID: intPtr(2), PrizeName: strPtr("二等奖"), PrizeLevel: intPtr(2), Timestamp: ts.Add(time.Minute), Won: true},
	}
}

// exerciseStore runs the same round trip against any backend.
func exerciseStore(t *testing.T, s EntityStore) {
	t.Helper()
	ctx := context.Background()

	users, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, Seed(ctx, s, testCatalog, testAdmin))

	prizes, err := s.LoadPrizes(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCatalog, prizes)

	users, err = s.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{testAdmin}, users)

	// A second seed must not overwrite existing data.
	prizes[0].Remaining = 0
	require.NoError(t, s.SavePrizes(ctx, prizes))
	require.NoError(t, Seed(ctx, s, testCatalog, testAdmin))
	reloaded, err := s.LoadPrizes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded[0].Remaining)

	records := sampleRecords()
	require.NoError(t, s.SaveRecords(ctx, records))
	got, err := s.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Nil(t, got[0].PrizeID)
	assert.Equal(t, 2, *got[1].PrizeID)
	assert.True(t, got[1].Timestamp.Equal(records[1].Timestamp))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SavePrizes(ctx, testCatalog))

	prizes, err := s.LoadPrizes(ctx)
	require.NoError(t, err)
	prizes[0].Remaining = 99

	again, err := s.LoadPrizes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Remaining)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseStore(t, s)

	_, err = os.Stat(filepath.Join(s.Dir, PrizesKey+".json"))
	assert.NoError(t, err)
}

func TestFileStore_EmptyCollectionEncodesAsArray(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.SaveRecords(context.Background(), nil))

	data, err := os.ReadFile(filepath.Join(s.Dir, RecordsKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, UsersKey+".json"), []byte("{not json"), 0o644))

	_, err = s.LoadUsers(context.Background())
	assert.Error(t, err)
}
