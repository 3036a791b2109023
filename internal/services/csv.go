package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"classdraw/internal/models"

	"github.com/google/logger"
)

// ImportPrizesCSV appends the prizes listed in r to the catalog.
// Each row is name,description,level,remaining. Malformed rows are skipped;
// a read error aborts the import without saving anything.
func (s *LotteryService) ImportPrizesCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []models.Prize
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read prize csv: %w", err)
		}

		if len(record) != 4 {
			logger.Infof("Skipping malformed CSV record: %v", record)
			continue
		}
		level, err := strconv.Atoi(record[2])
		if err != nil {
			logger.Infof("Skipping CSV record with invalid level: %v", record)
			continue
		}
		remaining, err := strconv.Atoi(record[3])
		if err != nil {
			logger.Infof("Skipping CSV record with invalid remaining: %v", record)
			continue
		}
		p := models.Prize{Name: record[0], Description: record[1], Level: level, Remaining: remaining}
		if err := validatePrize(p); err != nil {
			logger.Infof("Skipping CSV record %v: %v", record, err)
			continue
		}
		entries = append(entries, p)
	}

	if len(entries) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	added, err := s.addPrizes(ctx, entries)
	if err != nil {
		return 0, err
	}
	return len(added), nil
}

// ExportRecordsCSV writes every record to w as CSV, prefixed with a UTF-8 BOM
// so spreadsheet tools pick the right encoding.
func (s *LotteryService) ExportRecordsCSV(ctx context.Context, w io.Writer) error {
	records, err := s.AllRecords(ctx)
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"studentId", "userName", "won", "prizeId", "prizeName", "prizeLevel", "timestamp"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.StudentID,
			r.UserName,
			strconv.FormatBool(r.Won),
			optionalInt(r.PrizeID),
			optionalString(r.PrizeName),
			optionalInt(r.PrizeLevel),
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
