// Package archive renders closed activity ledgers to CSV and uploads them to
// object storage for long-term retention.
package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/adapters/storage"
	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/platform/logger"
)

// LedgerReader loads one day's ledger.
type LedgerReader interface {
	LedgerFor(ctx context.Context, repID uuid.UUID, date string) (*activity.Ledger, error)
}

// Archiver uploads per-day ledger CSVs.
type Archiver struct {
	ledgers LedgerReader
	store   storage.ObjectStore
	bucket  string
	log     *logger.Logger
}

// New creates the archiver.
func New(ledgers LedgerReader, store storage.ObjectStore, bucket string, log *logger.Logger) *Archiver {
	return &Archiver{ledgers: ledgers, store: store, bucket: bucket, log: log}
}

// ArchiveDay renders the date's ledger and uploads it. Empty ledgers are
// skipped. Returns the object key, or "" when nothing was uploaded.
func (a *Archiver) ArchiveDay(ctx context.Context, repID uuid.UUID, date string) (string, error) {
	ledger, err := a.ledgers.LedgerFor(ctx, repID, date)
	if err != nil {
		return "", err
	}
	if len(ledger.Records) == 0 {
		return "", nil
	}

	data, err := renderCSV(ledger)
	if err != nil {
		return "", err
	}

	objectKey := ObjectKey(repID, date)
	if _, err := a.store.Upload(ctx, a.bucket, objectKey, "text/csv",
		bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}

	a.log.Info("ledger archived",
		"repId", repID.String(),
		"date", date,
		"records", len(ledger.Records),
		"objectKey", objectKey,
	)
	return objectKey, nil
}

// ObjectKey returns the storage key for a rep's day ledger.
func ObjectKey(repID uuid.UUID, date string) string {
	return fmt.Sprintf("ledgers/%s/%s.csv", repID, date)
}

func renderCSV(ledger *activity.Ledger) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Recorded At", "Contact ID", "Company", "Activity Type", "Outcome", "Note"}); err != nil {
		return nil, fmt.Errorf("render ledger csv: %w", err)
	}
	for _, rec := range ledger.Records {
		row := []string{
			rec.At.UTC().Format(time.RFC3339),
			rec.ContactID.String(),
			rec.CompanyName,
			string(rec.ActivityType),
			string(rec.Outcome),
			rec.Note,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("render ledger csv: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("render ledger csv: %w", err)
	}
	return buf.Bytes(), nil
}
