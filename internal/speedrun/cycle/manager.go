package cycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/quota"
)

// ErrStaleCycle is returned when a mutation references a date that has
// rolled over. The caller starts a fresh cycle and retries.
var ErrStaleCycle = errors.New("cycle date has rolled over")

// Store persists day states and lead lifecycle records. The repository
// package implements it on postgres; tests use an in-memory store.
type Store interface {
	DayState(ctx context.Context, repID uuid.UUID, date string) (*DayState, error)
	LatestDayState(ctx context.Context, repID uuid.UUID) (*DayState, error)
	SaveDayState(ctx context.Context, state *DayState) error
	LeadState(ctx context.Context, repID, contactID uuid.UUID) (*domain.LeadState, error)
	LeadStates(ctx context.Context, repID uuid.UUID) (map[uuid.UUID]domain.LeadState, error)
	SaveLeadState(ctx context.Context, state domain.LeadState) error
}

// Ranker orders a pool for the representative's settings.
type Ranker interface {
	RankAll(contacts []domain.Contact, settings domain.Settings, now time.Time) []domain.ScoredContact
}

// BatchResult is the outcome of StartCycle or AddMore.
type BatchResult struct {
	Date         string
	Batch        []domain.ScoredContact
	Added        int
	DailyTarget  int
	TargetReason string
	// PoolExhausted signals that the eligible pool ran dry. It is a normal
	// condition, never an error.
	PoolExhausted bool
	// NewDay is true the first time a cycle is started on this date.
	NewDay        bool
	PreviousDate  string
	WeekCompleted int
}

// ActionResult is the outcome of a contact mutation.
type ActionResult struct {
	Date                string
	Record              activity.Record
	CompletionKind      domain.CompletionKind
	CompletedToday      int
	DailyTarget         int
	DailyTargetMet      bool
	DailyTargetJustMet  bool
	WeeklyTargetMet     bool
	WeeklyTargetJustMet bool
	WeekCompleted       int
}

// Manager runs the daily work cycle. All mutating operations for one
// representative are serialized through a per-rep mutex.
type Manager struct {
	store     Store
	tracker   *activity.Tracker
	ranker    Ranker
	batchSize int
	clamps    quota.Clamps
	now       func() time.Time

	mu       sync.Mutex
	repLocks map[uuid.UUID]*sync.Mutex
}

// NewManager creates the cycle manager. A nil clamps uses the stock
// per-strategy daily target bounds.
func NewManager(store Store, tracker *activity.Tracker, ranker Ranker, batchSize int, clamps quota.Clamps) *Manager {
	if clamps == nil {
		clamps = quota.DefaultClamps()
	}
	return &Manager{
		store:     store,
		tracker:   tracker,
		ranker:    ranker,
		batchSize: batchSize,
		clamps:    clamps,
		now:       time.Now,
		repLocks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (m *Manager) lockRep(repID uuid.UUID) func() {
	m.mu.Lock()
	lock, ok := m.repLocks[repID]
	if !ok {
		lock = &sync.Mutex{}
		m.repLocks[repID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// StartCycle opens (or resumes) today's cycle. A fresh day gets a new day
// state carrying the week-to-date completion count; an in-flight day returns
// the current queue unchanged, so repeated calls are deterministic.
func (m *Manager) StartCycle(ctx context.Context, pool []domain.Contact, settings domain.Settings) (*BatchResult, error) {
	now := m.now()
	loc := settings.Location()
	date := activity.DateKey(now, loc)
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.store.DayState(ctx, repID, date)
	if err != nil {
		return nil, fmt.Errorf("load day state: %w", err)
	}

	result := &BatchResult{Date: date}

	if day == nil {
		latest, err := m.store.LatestDayState(ctx, repID)
		if err != nil {
			return nil, fmt.Errorf("load latest day state: %w", err)
		}
		day = NewDayState(repID, date, now)
		if latest != nil {
			result.PreviousDate = latest.Date
			if sameWeek(latest.Date, date) {
				day.WeekCompletedBefore = latest.WeekCompleted()
			}
		}
		result.NewDay = true
	}

	target, reason := quota.ComputeDailyTarget(settings, quota.WeekProgress{
		WeeklyTarget:      settings.WeeklyTarget,
		CompletedThisWeek: day.WeekCompleted(),
		RemainingWorkdays: quota.RemainingWorkdays(now.In(loc)),
	}, m.clamps)
	day.DailyTarget = target
	day.TargetReason = reason

	ranked := m.ranker.RankAll(pool, settings, now)
	eligible, err := m.eligibleRanked(ctx, ranked, day, now)
	if err != nil {
		return nil, err
	}

	if len(day.Queue) > 0 {
		// Resume: the current batch keeps its order until the queue drains.
		byID := make(map[uuid.UUID]domain.ScoredContact, len(ranked))
		for _, sc := range ranked {
			byID[sc.ID] = sc
		}
		for _, id := range day.Queue {
			if sc, ok := byID[id]; ok {
				result.Batch = append(result.Batch, sc)
			}
		}
		result.PoolExhausted = len(eligible) == 0
	} else {
		n := m.batchSize
		if n > len(eligible) {
			n = len(eligible)
		}
		result.Batch = eligible[:n]
		for _, sc := range result.Batch {
			day.Viewed.Add(sc.ID)
			day.Queue = append(day.Queue, sc.ID)
		}
		result.Added = n
		result.PoolExhausted = len(eligible) == n
	}

	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return nil, fmt.Errorf("save day state: %w", err)
	}

	result.DailyTarget = day.DailyTarget
	result.TargetReason = day.TargetReason
	result.WeekCompleted = day.WeekCompleted()
	return result, nil
}

// AddMore appends a backfill batch to today's queue. The count comes from
// the quota calculator; an empty eligible pool sets PoolExhausted.
func (m *Manager) AddMore(ctx context.Context, pool []domain.Contact, settings domain.Settings) (*BatchResult, error) {
	now := m.now()
	loc := settings.Location()
	date := activity.DateKey(now, loc)
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.store.DayState(ctx, repID, date)
	if err != nil {
		return nil, fmt.Errorf("load day state: %w", err)
	}
	if day == nil {
		return nil, ErrStaleCycle
	}

	completedToday, err := m.tracker.CompletedContactsToday(ctx, repID, date)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Date:          date,
		DailyTarget:   day.DailyTarget,
		TargetReason:  day.TargetReason,
		WeekCompleted: day.WeekCompleted(),
	}

	count, reason := quota.ComputeBackfillCount(day.DailyTarget, completedToday, len(day.Queue))
	result.TargetReason = reason
	if count == 0 {
		return result, nil
	}

	ranked := m.ranker.RankAll(pool, settings, now)
	eligible, err := m.eligibleRanked(ctx, ranked, day, now)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		result.PoolExhausted = true
		return result, nil
	}

	if count > len(eligible) {
		count = len(eligible)
	}
	result.Batch = eligible[:count]
	for _, sc := range result.Batch {
		day.Viewed.Add(sc.ID)
		day.Queue = append(day.Queue, sc.ID)
	}
	result.Added = count
	result.PoolExhausted = len(eligible) == count

	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return nil, fmt.Errorf("save day state: %w", err)
	}
	return result, nil
}

// Complete records an outreach on the contact and closes it out for the day.
// Attempted outcomes (voicemail, no answer, busy) keep the lead active for
// later in the week; same-day suppression still applies either way.
func (m *Manager) Complete(ctx context.Context, contact domain.Contact, settings domain.Settings, date string, activityType domain.ActivityType, outcome domain.Outcome, note string) (*ActionResult, error) {
	now := m.now()
	loc := settings.Location()
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.currentDay(ctx, repID, date, now, loc)
	if err != nil {
		return nil, err
	}

	rec, err := m.tracker.Record(ctx, repID, contact.ID, contact.CompanyName, activityType, outcome, note, now, loc)
	if err != nil {
		return nil, err
	}

	day.popQueue(contact.ID)
	day.Viewed.Remove(contact.ID)
	day.Completed.Add(contact.ID)

	completedToday, err := m.tracker.CompletedContactsToday(ctx, repID, date)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{
		Date:           date,
		Record:         rec,
		CompletionKind: outcome.Completion(),
		CompletedToday: completedToday,
		DailyTarget:    day.DailyTarget,
		WeekCompleted:  day.WeekCompleted(),
	}

	if day.DailyTarget > 0 && completedToday >= day.DailyTarget && !day.DailyTargetMet {
		day.DailyTargetMet = true
		result.DailyTargetJustMet = true
	}
	if settings.WeeklyTarget > 0 && day.WeekCompleted() >= settings.WeeklyTarget && !day.WeeklyTargetMet {
		day.WeeklyTargetMet = true
		result.WeeklyTargetJustMet = true
	}
	result.DailyTargetMet = day.DailyTargetMet
	result.WeeklyTargetMet = day.WeeklyTargetMet

	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return nil, fmt.Errorf("save day state: %w", err)
	}

	// Stamp the lifecycle record so freshness decay restarts from today.
	state, err := m.store.LeadState(ctx, repID, contact.ID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		s := domain.NewLeadState(contact.ID, repID, now)
		state = &s
	}
	state.LastActionAt = now
	state.UpdatedAt = now
	if err := m.store.SaveLeadState(ctx, *state); err != nil {
		return nil, fmt.Errorf("save lead state: %w", err)
	}

	return result, nil
}

// Skip sets the contact aside for the rest of the day without recording an
// activity or touching its lifecycle.
func (m *Manager) Skip(ctx context.Context, contactID uuid.UUID, settings domain.Settings, date string) (*ActionResult, error) {
	now := m.now()
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.currentDay(ctx, repID, date, now, settings.Location())
	if err != nil {
		return nil, err
	}

	day.popQueue(contactID)
	day.Viewed.Remove(contactID)
	day.Skipped.Add(contactID)
	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return nil, fmt.Errorf("save day state: %w", err)
	}

	return &ActionResult{
		Date:           date,
		DailyTarget:    day.DailyTarget,
		DailyTargetMet: day.DailyTargetMet,
		WeekCompleted:  day.WeekCompleted(),
	}, nil
}

// Snooze puts the lead to sleep until the given time and drops it from
// today's queue.
func (m *Manager) Snooze(ctx context.Context, contactID uuid.UUID, settings domain.Settings, date string, until time.Time) error {
	now := m.now()
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.currentDay(ctx, repID, date, now, settings.Location())
	if err != nil {
		return err
	}

	state, err := m.leadStateOrNew(ctx, repID, contactID, now)
	if err != nil {
		return err
	}
	if err := state.Snooze(until, now); err != nil {
		return err
	}
	if err := m.store.SaveLeadState(ctx, *state); err != nil {
		return fmt.Errorf("save lead state: %w", err)
	}

	day.popQueue(contactID)
	day.Viewed.Remove(contactID)
	day.Snoozed.Add(contactID)
	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return fmt.Errorf("save day state: %w", err)
	}
	return nil
}

// Remove takes the lead out of circulation, permanently when asked. The
// lifecycle record survives; removal is a status, never a delete.
func (m *Manager) Remove(ctx context.Context, contactID uuid.UUID, settings domain.Settings, date, reason string, permanent bool) error {
	now := m.now()
	repID := settings.RepID

	unlock := m.lockRep(repID)
	defer unlock()

	day, err := m.currentDay(ctx, repID, date, now, settings.Location())
	if err != nil {
		return err
	}

	state, err := m.leadStateOrNew(ctx, repID, contactID, now)
	if err != nil {
		return err
	}
	if err := state.Remove(reason, permanent, now); err != nil {
		return err
	}
	if err := m.store.SaveLeadState(ctx, *state); err != nil {
		return fmt.Errorf("save lead state: %w", err)
	}

	day.popQueue(contactID)
	day.Viewed.Remove(contactID)
	day.Removed.Add(contactID)
	day.UpdatedAt = now
	if err := m.store.SaveDayState(ctx, day); err != nil {
		return fmt.Errorf("save day state: %w", err)
	}
	return nil
}

// Reactivate returns a snoozed or temporarily removed lead to circulation.
// It is a pool-level operation and needs no open cycle.
func (m *Manager) Reactivate(ctx context.Context, repID, contactID uuid.UUID) error {
	now := m.now()

	unlock := m.lockRep(repID)
	defer unlock()

	state, err := m.store.LeadState(ctx, repID, contactID)
	if err != nil {
		return err
	}
	if state == nil {
		return domain.ErrIllegalTransition
	}
	if err := state.Reactivate(now); err != nil {
		return err
	}
	if err := m.store.SaveLeadState(ctx, *state); err != nil {
		return fmt.Errorf("save lead state: %w", err)
	}
	return nil
}

// currentDay loads the day state for a mutation, rejecting rolled-over dates.
func (m *Manager) currentDay(ctx context.Context, repID uuid.UUID, date string, now time.Time, loc *time.Location) (*DayState, error) {
	if date != activity.DateKey(now, loc) {
		return nil, ErrStaleCycle
	}
	day, err := m.store.DayState(ctx, repID, date)
	if err != nil {
		return nil, fmt.Errorf("load day state: %w", err)
	}
	if day == nil {
		return nil, ErrStaleCycle
	}
	return day, nil
}

func (m *Manager) leadStateOrNew(ctx context.Context, repID, contactID uuid.UUID, now time.Time) (*domain.LeadState, error) {
	state, err := m.store.LeadState(ctx, repID, contactID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		s := domain.NewLeadState(contactID, repID, now)
		state = &s
	}
	return state, nil
}

// eligibleRanked filters a ranked pool down to contacts that may surface
// today: lifecycle-active (observing lazy snooze expiry), not yet handled
// today, not already contacted today per the ledger, and at most one contact
// per company per day. Contacts without a company are exempt from the
// company cap.
func (m *Manager) eligibleRanked(ctx context.Context, ranked []domain.ScoredContact, day *DayState, now time.Time) ([]domain.ScoredContact, error) {
	states, err := m.store.LeadStates(ctx, day.RepID)
	if err != nil {
		return nil, fmt.Errorf("load lead states: %w", err)
	}
	ledger, err := m.tracker.LedgerFor(ctx, day.RepID, day.Date)
	if err != nil {
		return nil, err
	}

	// Companies already represented in today's queue count against the cap.
	companyByID := make(map[uuid.UUID]string, len(ranked))
	for _, sc := range ranked {
		companyByID[sc.ID] = strings.ToLower(sc.CompanyName)
	}
	seenCompanies := make(map[string]struct{})
	for _, id := range day.Queue {
		if company := companyByID[id]; company != "" {
			seenCompanies[company] = struct{}{}
		}
	}

	eligible := make([]domain.ScoredContact, 0, len(ranked))
	for _, sc := range ranked {
		if day.Handled(sc.ID) {
			continue
		}
		if ledger.WasContactedToday(sc.ID) {
			continue
		}
		if company := companyByID[sc.ID]; company != "" {
			if _, taken := seenCompanies[company]; taken {
				continue
			}
			if ledger.CompanyContactedToday(sc.CompanyName) {
				continue
			}
		}
		if state, ok := states[sc.ID]; ok {
			if state.Observe(now) {
				if err := m.store.SaveLeadState(ctx, state); err != nil {
					return nil, fmt.Errorf("save lead state: %w", err)
				}
			}
			if state.Status != domain.StatusActive {
				continue
			}
		}
		if company := companyByID[sc.ID]; company != "" {
			seenCompanies[company] = struct{}{}
		}
		eligible = append(eligible, sc)
	}
	return eligible, nil
}
