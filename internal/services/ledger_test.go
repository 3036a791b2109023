package services

import (
	"context"
	"testing"

	"classdraw/internal/models"
	"classdraw/internal/store"
)

func TestRecordLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewRecordLedger(store.NewMemoryStore())

	if participated, err := ledger.HasParticipated(ctx, "S1"); err != nil || participated {
		t.Fatalf("Expected no participation on an empty ledger, got %v, %v", participated, err)
	}

	level := 3
	prizeID := 3
	name := "三等奖"
	records := []models.LotteryRecord{
		{ID: "r1", StudentID: "S1", Won: false},
		{ID: "r2", StudentID: "S2", Won: true, PrizeID: &prizeID, PrizeName: &name, PrizeLevel: &level},
		{ID: "r3", StudentID: "S3", Won: false},
	}
	for _, r := range records {
		if err := ledger.Append(ctx, r); err != nil {
			t.Fatalf("Expected no error appending %s, but got %v", r.ID, err)
		}
	}

	t.Run("Participation", func(t *testing.T) {
		if participated, _ := ledger.HasParticipated(ctx, "S1"); !participated {
			t.Error("Expected S1 to have participated")
		}
		if participated, _ := ledger.HasParticipated(ctx, "s1"); participated {
			t.Error("Expected student ids to be case-sensitive")
		}
	})

	t.Run("Records for one student", func(t *testing.T) {
		mine, err := ledger.RecordsFor(ctx, "S1")
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(mine) != 1 || mine[0].ID != "r1" {
			t.Errorf("Expected only r1, got %+v", mine)
		}
	})

	t.Run("All records in append order", func(t *testing.T) {
		all, err := ledger.AllRecords(ctx)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(all) != 3 || all[0].ID != "r1" || all[1].ID != "r2" || all[2].ID != "r3" {
			t.Errorf("Unexpected records %+v", all)
		}
	})

	t.Run("Winning records", func(t *testing.T) {
		winning, err := ledger.WinningRecords(ctx)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(winning) != 1 || winning[0].ID != "r2" {
			t.Errorf("Expected only r2, got %+v", winning)
		}
	})
}

// Append itself does not guard against duplicates; the service does.
func TestRecordLedger_AppendAcceptsDuplicates(t *testing.T) {
	ctx := context.Background()
	ledger := NewRecordLedger(store.NewMemoryStore())

	ledger.Append(ctx, models.LotteryRecord{ID: "a", StudentID: "S1"})
	ledger.Append(ctx, models.LotteryRecord{ID: "b", StudentID: "S1"})

	records, err := ledger.RecordsFor(ctx, "S1")
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}
