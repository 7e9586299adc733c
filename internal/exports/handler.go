package exports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/platform/httpkit"
)

const dateLayout = "2006-01-02"

// Handler serves activity ledger downloads.
type Handler struct {
	ledgers LedgerReader
}

// NewHandler creates the export handler.
func NewHandler(ledgers LedgerReader) *Handler {
	return &Handler{ledgers: ledgers}
}

// ExportActivitiesCSV streams one day's ledger as CSV. The date defaults to
// today in the requested timezone; past-day ledgers are immutable so the
// output for a closed date never changes.
func (h *Handler) ExportActivitiesCSV(c *gin.Context) {
	identity, ok := httpkit.IdentityFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	location, ok := parseTimezone(c)
	if !ok {
		return
	}

	date, ok := parseDate(c, location)
	if !ok {
		return
	}

	ledger, err := h.ledgers.LedgerFor(c.Request.Context(), identity.RepID, date)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	writer, ok := startCSVResponse(c, date)
	if !ok {
		return
	}
	for _, rec := range ledger.Records {
		if err := writer.Write(recordRow(rec, location)); err != nil {
			return
		}
	}
	writer.Flush()
}

func csvHeaders() []string {
	return []string{
		"Recorded At",
		"Contact ID",
		"Company",
		"Activity Type",
		"Outcome",
		"Note",
	}
}

func recordRow(rec activity.Record, location *time.Location) []string {
	return []string{
		rec.At.In(location).Format(time.RFC3339),
		rec.ContactID.String(),
		rec.CompanyName,
		string(rec.ActivityType),
		string(rec.Outcome),
		rec.Note,
	}
}

func startCSVResponse(c *gin.Context, date string) (*csv.Writer, bool) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=activities-%s.csv", date))

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders()); err != nil {
		return nil, false
	}
	return writer, true
}

func parseTimezone(c *gin.Context) (*time.Location, bool) {
	tzName := strings.TrimSpace(c.DefaultQuery("timezone", "UTC"))
	location, err := time.LoadLocation(tzName)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid timezone")
		return nil, false
	}
	return location, true
}

func parseDate(c *gin.Context, location *time.Location) (string, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return time.Now().In(location).Format(dateLayout), true
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return "", false
	}
	return raw, true
}
