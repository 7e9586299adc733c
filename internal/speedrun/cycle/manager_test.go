package cycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/scoring"
)

var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type memStore struct {
	days    map[string]*DayState
	leads   map[string]domain.LeadState
	records map[string][]activity.Record
}

func newMemStore() *memStore {
	return &memStore{
		days:    make(map[string]*DayState),
		leads:   make(map[string]domain.LeadState),
		records: make(map[string][]activity.Record),
	}
}

func dayKey(repID uuid.UUID, date string) string { return repID.String() + "|" + date }
func leadKey(repID, contactID uuid.UUID) string  { return repID.String() + "|" + contactID.String() }

func (m *memStore) DayState(_ context.Context, repID uuid.UUID, date string) (*DayState, error) {
	return m.days[dayKey(repID, date)], nil
}

func (m *memStore) LatestDayState(_ context.Context, repID uuid.UUID) (*DayState, error) {
	var latest *DayState
	for _, d := range m.days {
		if d.RepID != repID {
			continue
		}
		if latest == nil || d.Date > latest.Date {
			latest = d
		}
	}
	return latest, nil
}

func (m *memStore) SaveDayState(_ context.Context, state *DayState) error {
	m.days[dayKey(state.RepID, state.Date)] = state
	return nil
}

func (m *memStore) LeadState(_ context.Context, repID, contactID uuid.UUID) (*domain.LeadState, error) {
	if s, ok := m.leads[leadKey(repID, contactID)]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) LeadStates(_ context.Context, repID uuid.UUID) (map[uuid.UUID]domain.LeadState, error) {
	out := make(map[uuid.UUID]domain.LeadState)
	for _, s := range m.leads {
		if s.RepID == repID {
			out[s.ContactID] = s
		}
	}
	return out, nil
}

func (m *memStore) SaveLeadState(_ context.Context, state domain.LeadState) error {
	m.leads[leadKey(state.RepID, state.ContactID)] = state
	return nil
}

func (m *memStore) AppendRecord(_ context.Context, r activity.Record) error {
	k := dayKey(r.RepID, r.Date)
	m.records[k] = append(m.records[k], r)
	return nil
}

func (m *memStore) RecordsForDay(_ context.Context, repID uuid.UUID, date string) ([]activity.Record, error) {
	return m.records[dayKey(repID, date)], nil
}

type fixture struct {
	store    *memStore
	manager  *Manager
	settings domain.Settings
	pool     []domain.Contact
}

func newFixture(t *testing.T, poolSize, batchSize int, strategy domain.Strategy) *fixture {
	t.Helper()
	store := newMemStore()
	tracker := activity.NewTracker(store)
	ranker := scoring.New(scoring.DefaultTables())
	mgr := NewManager(store, tracker, ranker, batchSize, nil)
	mgr.now = func() time.Time { return monday }

	repID := uuid.New()
	roles := []domain.BuyerRole{
		domain.RoleDecisionMaker, domain.RoleChampion, domain.RoleInfluencer,
		domain.RoleEvaluator, domain.RoleUnknown,
	}
	pool := make([]domain.Contact, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		pool = append(pool, domain.Contact{
			ID:          uuid.New(),
			RepID:       repID,
			Name:        fmt.Sprintf("Contact %d", i),
			CompanyName: fmt.Sprintf("Company %d", i),
			CompanySize: domain.CompanySmall,
			Role:        roles[i%len(roles)],
			Timezone:    "UTC",
		})
	}

	return &fixture{
		store:   store,
		manager: mgr,
		settings: domain.Settings{
			RepID:        repID,
			DailyTarget:  30,
			WeeklyTarget: 150,
			Strategy:     strategy,
			Timezone:     "UTC",
		},
		pool: pool,
	}
}

func batchIDs(batch []domain.ScoredContact) []uuid.UUID {
	ids := make([]uuid.UUID, len(batch))
	for i, sc := range batch {
		ids[i] = sc.ID
	}
	return ids
}

func TestStartCycleIsDeterministic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30, 20, domain.StrategyOptimal)

	first, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatalf("StartCycle() error = %v", err)
	}
	if len(first.Batch) != 20 {
		t.Fatalf("batch size = %d, want 20", len(first.Batch))
	}
	if first.PoolExhausted {
		t.Error("pool flagged exhausted with eligible contacts remaining")
	}
	if !first.NewDay {
		t.Error("first StartCycle of the day should report NewDay")
	}

	second, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatalf("StartCycle() error = %v", err)
	}
	if second.NewDay {
		t.Error("resumed StartCycle should not report NewDay")
	}

	firstIDs := batchIDs(first.Batch)
	secondIDs := batchIDs(second.Batch)
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("resumed batch size %d != %d", len(secondIDs), len(firstIDs))
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("batch order changed at %d", i)
		}
	}
}

func TestShortPoolThenExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 15, 20, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatalf("StartCycle() error = %v", err)
	}
	if len(res.Batch) != 15 {
		t.Errorf("batch size = %d, want all 15 eligible", len(res.Batch))
	}
	if !res.PoolExhausted {
		t.Error("expected PoolExhausted after consuming the whole pool")
	}

	more, err := f.manager.AddMore(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatalf("AddMore() error = %v", err)
	}
	if more.Added != 0 {
		t.Errorf("AddMore added %d from an empty pool", more.Added)
	}
	if !more.PoolExhausted {
		t.Error("AddMore should flag PoolExhausted")
	}
}

func TestNoDuplicateSameDaySurfacing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 2, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	done := res.Batch[0]

	if _, err := f.manager.Complete(ctx, done.Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, ""); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	more, err := f.manager.AddMore(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range more.Batch {
		if sc.ID == done.ID {
			t.Fatal("completed contact resurfaced in backfill")
		}
	}

	resumed, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range resumed.Batch {
		if sc.ID == done.ID {
			t.Fatal("completed contact resurfaced on resume")
		}
	}
}

func TestSameCompanyOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, 1, domain.StrategyOptimal)
	for i := range f.pool {
		f.pool[i].CompanyName = "Initech"
	}

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(res.Batch))
	}

	if _, err := f.manager.Complete(ctx, res.Batch[0].Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, ""); err != nil {
		t.Fatal(err)
	}

	// The company was touched today; the colleague stays out of the queue.
	more, err := f.manager.AddMore(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if more.Added != 0 {
		t.Fatalf("backfill surfaced %d contacts at an already-touched company", more.Added)
	}

	// Tomorrow the company is fair game again.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 1) }
	next, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Batch) != 1 {
		t.Errorf("next day batch = %d, want 1", len(next.Batch))
	}
}

func TestSameCompanyDedupedWithinBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, domain.StrategyOptimal)
	f.pool[0].CompanyName = "Globex"
	f.pool[1].CompanyName = "Globex"

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}

	globex := 0
	for _, sc := range res.Batch {
		if sc.CompanyName == "Globex" {
			globex++
		}
	}
	if globex != 1 {
		t.Errorf("batch holds %d Globex contacts, want 1", globex)
	}
}

func TestAddMoreZeroAtSaturation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20, 10, domain.StrategyRevenue)
	f.settings.WeeklyTarget = 10 // daily target clamps to 5 for revenue

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if res.DailyTarget != 5 {
		t.Fatalf("daily target = %d, want 5", res.DailyTarget)
	}

	// Queue of 10 already covers the target of 5.
	more, err := f.manager.AddMore(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if more.Added != 0 {
		t.Errorf("backfill added %d, want exact zero at saturation", more.Added)
	}
	if more.PoolExhausted {
		t.Error("saturation is not pool exhaustion")
	}
}

func TestStaleCycleMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, 5, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}

	// A mutation referencing yesterday's date is rejected.
	if _, err := f.manager.Skip(ctx, res.Batch[0].ID, f.settings, "2026-03-01"); !errors.Is(err, ErrStaleCycle) {
		t.Errorf("Skip(stale date) error = %v, want ErrStaleCycle", err)
	}

	// After the date rolls over, yesterday's date is stale too.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 1) }
	if _, err := f.manager.Complete(ctx, f.pool[0], f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, ""); !errors.Is(err, ErrStaleCycle) {
		t.Errorf("Complete(rolled-over date) error = %v, want ErrStaleCycle", err)
	}
}

func TestAddMoreWithoutCycleIsStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, 5, domain.StrategyOptimal)

	if _, err := f.manager.AddMore(ctx, f.pool, f.settings); !errors.Is(err, ErrStaleCycle) {
		t.Errorf("AddMore without a cycle error = %v, want ErrStaleCycle", err)
	}
}

func TestSnoozeDropsFromQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 4, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	target := res.Batch[1]

	if err := f.manager.Snooze(ctx, target.ID, f.settings, res.Date, monday.Add(48*time.Hour)); err != nil {
		t.Fatalf("Snooze() error = %v", err)
	}

	resumed, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range resumed.Batch {
		if sc.ID == target.ID {
			t.Fatal("snoozed contact still in queue")
		}
	}

	// Invalid snooze durations surface the domain sentinel.
	err = f.manager.Snooze(ctx, res.Batch[0].ID, f.settings, res.Date, monday.Add(-time.Hour))
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Errorf("Snooze(past) error = %v, want ErrInvalidDuration", err)
	}
}

func TestRemovedPermanentNeverResurfaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, 5, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	gone := res.Batch[0]

	if err := f.manager.Remove(ctx, gone.ID, f.settings, res.Date, "not a fit", true); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := f.manager.Reactivate(ctx, f.settings.RepID, gone.ID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("Reactivate(permanent) error = %v, want ErrIllegalTransition", err)
	}

	// A week later the contact is still out of circulation.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 7) }
	next, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range next.Batch {
		if sc.ID == gone.ID {
			t.Fatal("permanently removed contact resurfaced")
		}
	}
}

func TestReactivatedContactReturnsNextDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	paused := res.Batch[0]

	if err := f.manager.Remove(ctx, paused.ID, f.settings, res.Date, "timing", false); err != nil {
		t.Fatal(err)
	}
	if err := f.manager.Reactivate(ctx, f.settings.RepID, paused.ID); err != nil {
		t.Fatalf("Reactivate() error = %v", err)
	}

	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 1) }
	next, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, sc := range next.Batch {
		if sc.ID == paused.ID {
			found = true
		}
	}
	if !found {
		t.Error("reactivated contact missing from next day's batch")
	}
}

func TestWeekToDateCarryover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 5, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range res.Batch[:3] {
		if _, err := f.manager.Complete(ctx, sc.Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, ""); err != nil {
			t.Fatal(err)
		}
	}

	// Tuesday carries Monday's three completions.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 1) }
	tue, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if tue.WeekCompleted != 3 {
		t.Errorf("Tuesday WeekCompleted = %d, want 3", tue.WeekCompleted)
	}
	if tue.PreviousDate != res.Date {
		t.Errorf("PreviousDate = %s, want %s", tue.PreviousDate, res.Date)
	}

	// Next Monday starts a fresh week.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 7) }
	nextWeek, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	if nextWeek.WeekCompleted != 0 {
		t.Errorf("next Monday WeekCompleted = %d, want 0", nextWeek.WeekCompleted)
	}
}

func TestDailyTargetMetOnCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 10, domain.StrategyRevenue)
	f.settings.WeeklyTarget = 10 // daily target 5

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}

	for i, sc := range res.Batch[:5] {
		ar, err := f.manager.Complete(ctx, sc.Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, "")
		if err != nil {
			t.Fatal(err)
		}
		wantJustMet := i == 4
		if ar.DailyTargetJustMet != wantJustMet {
			t.Errorf("completion %d: DailyTargetJustMet = %v, want %v", i+1, ar.DailyTargetJustMet, wantJustMet)
		}
		if ar.DailyTargetMet != (i >= 4) {
			t.Errorf("completion %d: DailyTargetMet = %v", i+1, ar.DailyTargetMet)
		}
	}
}

func TestCompleteMovesContactOutOfViewed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	done := res.Batch[0]

	if _, err := f.manager.Complete(ctx, done.Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeConnected, ""); err != nil {
		t.Fatal(err)
	}

	day, err := f.store.DayState(ctx, f.settings.RepID, res.Date)
	if err != nil || day == nil {
		t.Fatalf("day state missing: %v", err)
	}
	if day.Viewed.Has(done.ID) {
		t.Error("completed contact still counted as viewed")
	}
	if !day.Completed.Has(done.ID) {
		t.Error("completed contact missing from completed set")
	}
	// The untouched queue members stay viewed.
	for _, id := range day.Queue {
		if !day.Viewed.Has(id) {
			t.Errorf("queued contact %s lost its viewed mark", id)
		}
	}
}

func TestAttemptedOutcomeKeepsLeadActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, domain.StrategyOptimal)

	res, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	c := res.Batch[0]

	ar, err := f.manager.Complete(ctx, c.Contact, f.settings, res.Date, domain.ActivityCall, domain.OutcomeVoicemail, "")
	if err != nil {
		t.Fatal(err)
	}
	if ar.CompletionKind != domain.CompletionAttempted {
		t.Errorf("CompletionKind = %s, want attempted", ar.CompletionKind)
	}

	// Not today, even for an attempt.
	more, err := f.manager.AddMore(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range more.Batch {
		if sc.ID == c.ID {
			t.Fatal("attempted contact resurfaced same day")
		}
	}

	// Tomorrow it is back in circulation.
	f.manager.now = func() time.Time { return monday.AddDate(0, 0, 1) }
	next, err := f.manager.StartCycle(ctx, f.pool, f.settings)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, sc := range next.Batch {
		if sc.ID == c.ID {
			found = true
		}
	}
	if !found {
		t.Error("attempted contact missing the next day")
	}
}
