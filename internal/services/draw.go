package services

import (
	"math/rand"
	"time"

	"classdraw/internal/models"

	"github.com/google/uuid"
)

// DefaultWinProbability is the chance that a single draw wins anything.
const DefaultWinProbability = 0.3

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DrawEngine decides a single participant's outcome.
//
// A draw wins with probability WinProbability, provided at least one prize
// has stock. The winning prize is picked uniformly among the prizes in stock;
// its level plays no part in the choice. The engine never persists anything:
// it returns the record and the prize collection the caller must save.
type DrawEngine struct {
	WinProbability float64
	Rand           Source
	Now            func() time.Time
	NewID          func() string
}

// NewDrawEngine returns an engine backed by math/rand and the wall clock in
// UTC.
func NewDrawEngine(winProbability float64) *DrawEngine {
	return &DrawEngine{
		WinProbability: winProbability,
		Rand:           globalSource{},
		Now:            func() time.Time { return time.Now().UTC() },
		NewID:          uuid.NewString,
	}
}

// Draw resolves one draw for participant against the prizes snapshot.
// The returned slice equals prizes except for the awarded entry, if any.
func (e *DrawEngine) Draw(participant models.User, prizes []models.Prize) (models.LotteryRecord, []models.Prize, error) {
	if participant.ID == "" || participant.StudentID == "" {
		return models.LotteryRecord{}, nil, ErrInvalidParticipant
	}

	available := AvailablePrizes(prizes)
	won := e.Rand.Float64() < e.WinProbability && len(available) > 0

	record := models.LotteryRecord{
		ID:        e.NewID(),
		UserID:    participant.ID,
		StudentID: participant.StudentID,
		UserName:  participant.Name,
		Timestamp: e.Now(),
		Won:       won,
	}

	if !won {
		return record, append([]models.Prize(nil), prizes...), nil
	}

	idx := int(e.Rand.Float64() * float64(len(available)))
	if idx >= len(available) {
		idx = len(available) - 1
	}
	selected := available[idx]

	prizeID, prizeName, prizeLevel := selected.ID, selected.Name, selected.Level
	record.PrizeID = &prizeID
	record.PrizeName = &prizeName
	record.PrizeLevel = &prizeLevel

	return record, ApplyAward(prizes, selected.ID), nil
}
