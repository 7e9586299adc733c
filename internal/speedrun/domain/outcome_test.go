package domain

import "testing"

func TestOutcomeCompletion(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    CompletionKind
	}{
		{OutcomeConnected, CompletionDone},
		{OutcomePitched, CompletionDone},
		{OutcomeDemoScheduled, CompletionDone},
		{OutcomeNotInterested, CompletionDone},
		{OutcomeWrongNumber, CompletionDone},
		{OutcomeVoicemail, CompletionAttempted},
		{OutcomeNoAnswer, CompletionAttempted},
		{OutcomeBusy, CompletionAttempted},
	}

	for _, tt := range tests {
		if got := tt.outcome.Completion(); got != tt.want {
			t.Errorf("%s.Completion() = %s, want %s", tt.outcome, got, tt.want)
		}
	}
}

func TestValidActivityType(t *testing.T) {
	for _, at := range []ActivityType{ActivityCall, ActivityEmail, ActivityMessage, ActivityMeeting} {
		if !ValidActivityType(at) {
			t.Errorf("%s should be valid", at)
		}
	}
	for _, at := range []ActivityType{"fax", "linkedin", "sms"} {
		if ValidActivityType(at) {
			t.Errorf("%s should be invalid", at)
		}
	}
}
