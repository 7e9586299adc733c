package events

import (
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	EventCycleStarted        = "speedrun.cycle_started"
	EventBatchExtended       = "speedrun.batch_extended"
	EventContactCompleted    = "speedrun.contact_completed"
	EventContactSkipped      = "speedrun.contact_skipped"
	EventContactSnoozed      = "speedrun.contact_snoozed"
	EventContactRemoved      = "speedrun.contact_removed"
	EventActivityRecorded    = "speedrun.activity_recorded"
	EventDailyTargetReached  = "speedrun.daily_target_reached"
	EventWeeklyTargetReached = "speedrun.weekly_target_reached"
	EventNewDayStarted       = "speedrun.new_day_started"
	EventContactAdded        = "contacts.added_to_pool"
)

// ContactAdded fires when a contact enters a representative's pool. The
// speedrun module subscribes to open the contact's lifecycle record.
type ContactAdded struct {
	BaseEvent
	RepID     uuid.UUID
	ContactID uuid.UUID
}

func (ContactAdded) Name() string { return EventContactAdded }

// CycleStarted fires when a representative starts (or resumes) a daily cycle.
type CycleStarted struct {
	BaseEvent
	RepID     uuid.UUID
	Date      string
	BatchSize int
	PoolSize  int
}

func (CycleStarted) Name() string { return EventCycleStarted }

// BatchExtended fires when a backfill batch is appended to the day's queue.
type BatchExtended struct {
	BaseEvent
	RepID         uuid.UUID
	Date          string
	Added         int
	PoolExhausted bool
}

func (BatchExtended) Name() string { return EventBatchExtended }

// ContactCompleted fires when an outreach on a contact is completed.
type ContactCompleted struct {
	BaseEvent
	RepID        uuid.UUID
	ContactID    uuid.UUID
	Date         string
	ActivityType string
	Outcome      string
}

func (ContactCompleted) Name() string { return EventContactCompleted }

// ContactSkipped fires when a contact is skipped for the day.
type ContactSkipped struct {
	BaseEvent
	RepID     uuid.UUID
	ContactID uuid.UUID
	Date      string
}

func (ContactSkipped) Name() string { return EventContactSkipped }

// ContactSnoozed fires when a contact is snoozed until a future time.
type ContactSnoozed struct {
	BaseEvent
	RepID     uuid.UUID
	ContactID uuid.UUID
	Until     time.Time
}

func (ContactSnoozed) Name() string { return EventContactSnoozed }

// ContactRemoved fires when a contact is removed from circulation.
type ContactRemoved struct {
	BaseEvent
	RepID     uuid.UUID
	ContactID uuid.UUID
	Reason    string
	Permanent bool
}

func (ContactRemoved) Name() string { return EventContactRemoved }

// ActivityRecorded fires for every appended ledger entry.
type ActivityRecorded struct {
	BaseEvent
	RepID        uuid.UUID
	ContactID    uuid.UUID
	Date         string
	ActivityType string
}

func (ActivityRecorded) Name() string { return EventActivityRecorded }

// DailyTargetReached fires the moment today's completion count meets the
// daily target. The digest mailer subscribes to this.
type DailyTargetReached struct {
	BaseEvent
	RepID     uuid.UUID
	RepEmail  string
	Date      string
	Completed int
	Target    int
}

func (DailyTargetReached) Name() string { return EventDailyTargetReached }

// WeeklyTargetReached fires when the week's generated count meets the weekly
// target.
type WeeklyTargetReached struct {
	BaseEvent
	RepID     uuid.UUID
	Date      string
	Generated int
	Target    int
}

func (WeeklyTargetReached) Name() string { return EventWeeklyTargetReached }

// NewDayStarted fires the first time a cycle is started on a new rep-local
// date. The scheduler subscribes to archive the previous day's ledger and
// purge expired cycle states.
type NewDayStarted struct {
	BaseEvent
	RepID        uuid.UUID
	Date         string
	PreviousDate string
}

func (NewDayStarted) Name() string { return EventNewDayStarted }
