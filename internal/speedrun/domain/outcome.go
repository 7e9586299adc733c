package domain

// ActivityType identifies the outreach channel.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMessage ActivityType = "message"
	ActivityMeeting ActivityType = "meeting"
)

// ValidActivityType reports whether t is a known channel.
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMessage, ActivityMeeting:
		return true
	}
	return false
}

// Outcome is the result of a completed outreach.
type Outcome string

const (
	OutcomeConnected     Outcome = "connected"
	OutcomePitched       Outcome = "pitched"
	OutcomeDemoScheduled Outcome = "demo_scheduled"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeNoAnswer      Outcome = "no_answer"
	OutcomeBusy          Outcome = "busy"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeWrongNumber   Outcome = "wrong_number"
)

// CompletionKind classifies how an outcome closes the day's touch.
type CompletionKind string

const (
	// CompletionDone closes out the contact for the day with a real result.
	CompletionDone CompletionKind = "done"
	// CompletionAttempted counts the activity but the contact stays active
	// for retry later in the week. Same-day duplicate suppression still
	// applies.
	CompletionAttempted CompletionKind = "attempted"
)

// Completion maps an outcome to its completion kind. Reached-a-human results
// and dead ends are done; unanswered attempts stay open.
func (o Outcome) Completion() CompletionKind {
	switch o {
	case OutcomeVoicemail, OutcomeNoAnswer, OutcomeBusy:
		return CompletionAttempted
	default:
		return CompletionDone
	}
}

// ValidOutcome reports whether o is a known outcome.
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeConnected, OutcomePitched, OutcomeDemoScheduled,
		OutcomeVoicemail, OutcomeNoAnswer, OutcomeBusy,
		OutcomeNotInterested, OutcomeWrongNumber:
		return true
	}
	return false
}
