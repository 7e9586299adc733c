package exports

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/domain"
)

type stubLedgers struct {
	records map[string][]activity.Record
}

func (s *stubLedgers) LedgerFor(_ context.Context, repID uuid.UUID, date string) (*activity.Ledger, error) {
	return &activity.Ledger{RepID: repID, Date: date, Records: s.records[date]}, nil
}

func newTestRouter(ledgers LedgerReader, repID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("rep_id", repID)
		c.Set("rep_email", "rep@example.com")
	})
	engine.GET("/activities.csv", NewHandler(ledgers).ExportActivitiesCSV)
	return engine
}

func TestExportActivitiesCSV(t *testing.T) {
	repID := uuid.New()
	contactID := uuid.New()
	ledgers := &stubLedgers{records: map[string][]activity.Record{
		"2026-03-02": {
			{
				ID:           uuid.New(),
				RepID:        repID,
				ContactID:    contactID,
				CompanyName:  "Globex",
				ActivityType: domain.ActivityEmail,
				Outcome:      domain.OutcomePitched,
				Date:         "2026-03-02",
				At:           time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
			},
		},
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/activities.csv?date=2026-03-02", nil)
	newTestRouter(ledgers, repID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "activities-2026-03-02.csv") {
		t.Fatalf("content disposition = %q", got)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("csv rows = %d, want header plus one record", len(rows))
	}
	if rows[1][1] != contactID.String() || rows[1][3] != "email" || rows[1][4] != "pitched" {
		t.Fatalf("unexpected record row: %v", rows[1])
	}
}

func TestExportActivitiesCSVRejectsBadDate(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/activities.csv?date=03-02-2026", nil)
	newTestRouter(&stubLedgers{}, uuid.New()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
