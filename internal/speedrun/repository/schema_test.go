package repository

import (
	"regexp"
	"strings"
	"testing"

	"speedrun_backend/migrations"
)

// The store's hand-written SQL and the embedded migrations must agree on
// column names. Each entry lists every column the store reads or writes.
func TestMigrationsDefineStoreColumns(t *testing.T) {
	tests := []struct {
		file    string
		table   string
		columns []string
	}{
		{
			file:  "00001_create_contacts.sql",
			table: "contacts",
			columns: []string{
				"id", "rep_id", "name", "email", "phone", "company_name",
				"company_size", "buyer_role", "relationship", "deal_stage",
				"source", "timezone", "notes", "subject", "estimated_deal_value",
				"engagement_score", "ready_to_buy_score", "company_engagement",
				"last_touch_at", "created_at", "updated_at",
			},
		},
		{
			file:  "00002_create_lead_states.sql",
			table: "lead_states",
			columns: []string{
				"rep_id", "contact_id", "status", "snoozed_until",
				"remove_reason", "last_action_at", "updated_at",
			},
		},
		{
			file:  "00003_create_daily_cycle_states.sql",
			table: "daily_cycle_states",
			columns: []string{
				"rep_id", "cycle_date", "state", "created_at", "updated_at",
			},
		},
		{
			file:  "00004_create_activity_records.sql",
			table: "activity_records",
			columns: []string{
				"id", "rep_id", "contact_id", "company_name", "activity_type",
				"outcome", "note", "record_date", "recorded_at",
			},
		},
		{
			file:  "00005_create_user_settings.sql",
			table: "user_settings",
			columns: []string{
				"rep_id", "daily_target", "weekly_target", "strategy",
				"rep_role", "yearly_quota", "pipeline_cover", "timezone",
				"digest_enabled", "updated_at",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			body := createTableBody(t, tt.file, tt.table)
			for _, col := range tt.columns {
				pattern := regexp.MustCompile(`(?m)^\s*` + col + `\s`)
				if !pattern.MatchString(body) {
					t.Errorf("migration %s does not define column %s.%s", tt.file, tt.table, col)
				}
			}
		})
	}
}

// The contact score signals are whole numbers in the domain model; the
// columns must scan into int.
func TestContactScoreColumnsAreIntegers(t *testing.T) {
	body := createTableBody(t, "00001_create_contacts.sql", "contacts")
	for _, col := range []string{"engagement_score", "ready_to_buy_score", "company_engagement"} {
		pattern := regexp.MustCompile(`(?m)^\s*` + col + `\s+INTEGER`)
		if !pattern.MatchString(body) {
			t.Errorf("column contacts.%s is not INTEGER", col)
		}
	}
}

func createTableBody(t *testing.T, file, table string) string {
	t.Helper()
	data, err := migrations.FS.ReadFile(file)
	if err != nil {
		t.Fatalf("read migration %s: %v", file, err)
	}

	sql := string(data)
	marker := "CREATE TABLE " + table + " ("
	start := strings.Index(sql, marker)
	if start < 0 {
		t.Fatalf("migration %s does not create table %s", file, table)
	}
	rest := sql[start+len(marker):]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("migration %s: unterminated CREATE TABLE %s", file, table)
	}
	return rest[:end]
}
