package services

import (
	"context"
	"fmt"

	"classdraw/internal/models"
	"classdraw/internal/store"
)

// RecordLedger is the append-only list of draw outcomes.
//
// Append does not reject a second record for the same student. Callers gate
// on HasParticipated before drawing.
type RecordLedger struct {
	store store.EntityStore
}

// NewRecordLedger creates a ledger over s.
func NewRecordLedger(s store.EntityStore) *RecordLedger {
	return &RecordLedger{store: s}
}

// HasParticipated reports whether any record exists for studentID.
func (l *RecordLedger) HasParticipated(ctx context.Context, studentID string) (bool, error) {
	records, err := l.AllRecords(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

// RecordsFor returns studentID's records in insertion order.
func (l *RecordLedger) RecordsFor(ctx context.Context, studentID string) ([]models.LotteryRecord, error) {
	return l.filter(ctx, func(r models.LotteryRecord) bool { return r.StudentID == studentID })
}

// AllRecords returns every record in insertion order.
func (l *RecordLedger) AllRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	records, err := l.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// WinningRecords returns the records with Won set, in insertion order.
func (l *RecordLedger) WinningRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	return l.filter(ctx, func(r models.LotteryRecord) bool { return r.Won })
}

// Append persists record at the end of the ledger.
func (l *RecordLedger) Append(ctx context.Context, record models.LotteryRecord) error {
	records, err := l.AllRecords(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)
	if err := l.store.SaveRecords(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

func (l *RecordLedger) filter(ctx context.Context, keep func(models.LotteryRecord) bool) ([]models.LotteryRecord, error) {
	records, err := l.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.LotteryRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
