package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/adapters/storage"
	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/platform/logger"
)

type memLedgers struct {
	records map[string][]activity.Record
}

func (m *memLedgers) LedgerFor(_ context.Context, repID uuid.UUID, date string) (*activity.Ledger, error) {
	return &activity.Ledger{RepID: repID, Date: date, Records: m.records[date]}, nil
}

type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) EnsureBucketExists(context.Context, string) error { return nil }

func (m *memObjectStore) Upload(_ context.Context, _, objectKey, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[objectKey] = data
	return objectKey, nil
}

func (m *memObjectStore) Download(_ context.Context, _, objectKey string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[objectKey])), nil
}

func (m *memObjectStore) PresignedDownloadURL(context.Context, string, string) (*storage.PresignedURL, error) {
	return nil, nil
}

func TestArchiveDayUploadsCSV(t *testing.T) {
	repID := uuid.New()
	contactID := uuid.New()
	ledgers := &memLedgers{records: map[string][]activity.Record{
		"2026-03-02": {
			{
				ID:           uuid.New(),
				RepID:        repID,
				ContactID:    contactID,
				CompanyName:  "Acme",
				ActivityType: domain.ActivityCall,
				Outcome:      domain.OutcomeConnected,
				Note:         "intro call",
				Date:         "2026-03-02",
				At:           time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC),
			},
		},
	}}
	store := &memObjectStore{}

	archiver := New(ledgers, store, "archives", logger.New("test"))
	key, err := archiver.ArchiveDay(context.Background(), repID, "2026-03-02")
	if err != nil {
		t.Fatalf("ArchiveDay: %v", err)
	}
	if want := ObjectKey(repID, "2026-03-02"); key != want {
		t.Fatalf("object key = %q, want %q", key, want)
	}

	rows, err := csv.NewReader(bytes.NewReader(store.objects[key])).ReadAll()
	if err != nil {
		t.Fatalf("parse uploaded csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("csv rows = %d, want header plus one record", len(rows))
	}
	if rows[1][2] != "Acme" || rows[1][3] != "call" || rows[1][4] != "connected" {
		t.Fatalf("unexpected record row: %v", rows[1])
	}
}

func TestArchiveDaySkipsEmptyLedger(t *testing.T) {
	store := &memObjectStore{}
	archiver := New(&memLedgers{records: map[string][]activity.Record{}}, store, "archives", logger.New("test"))

	key, err := archiver.ArchiveDay(context.Background(), uuid.New(), "2026-03-03")
	if err != nil {
		t.Fatalf("ArchiveDay: %v", err)
	}
	if key != "" {
		t.Fatalf("expected no upload for empty ledger, got key %q", key)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected no objects, got %d", len(store.objects))
	}
}
