// Package transport defines the speedrun request and response shapes.
package transport

import (
	"time"

	"speedrun_backend/internal/speedrun/cycle"
	"speedrun_backend/internal/speedrun/domain"
)

// ScoredContactResponse is one ranked queue entry.
type ScoredContactResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CompanyName     string  `json:"companyName,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	DealStage       string  `json:"dealStage,omitempty"`
	Timezone        string  `json:"timezone,omitempty"`
	Score           float64 `json:"score"`
	Priority        string  `json:"priority"`
	RankingReason   string  `json:"rankingReason"`
	CallingPriority int     `json:"callingPriority"`
	CallingWindow   string  `json:"callingWindow"`
}

// BatchResponse is the StartCycle / AddMore / queue payload.
type BatchResponse struct {
	Date          string                  `json:"date"`
	Batch         []ScoredContactResponse `json:"batch"`
	Added         int                     `json:"added"`
	DailyTarget   int                     `json:"dailyTarget"`
	TargetReason  string                  `json:"targetReason"`
	PoolExhausted bool                    `json:"poolExhausted"`
	WeekCompleted int                     `json:"weekCompleted"`
}

// ToScoredContact converts one scored contact.
func ToScoredContact(sc domain.ScoredContact) ScoredContactResponse {
	return ScoredContactResponse{
		ID:              sc.ID.String(),
		Name:            sc.Name,
		CompanyName:     sc.CompanyName,
		Email:           sc.Email,
		Phone:           sc.Phone,
		DealStage:       string(sc.DealStage),
		Timezone:        sc.Timezone,
		Score:           sc.Score,
		Priority:        string(sc.Priority),
		RankingReason:   sc.RankingReason,
		CallingPriority: sc.CallingPriority,
		CallingWindow:   sc.CallingWindow,
	}
}

// ToBatchResponse converts a cycle batch result.
func ToBatchResponse(r *cycle.BatchResult) BatchResponse {
	batch := make([]ScoredContactResponse, 0, len(r.Batch))
	for _, sc := range r.Batch {
		batch = append(batch, ToScoredContact(sc))
	}
	return BatchResponse{
		Date:          r.Date,
		Batch:         batch,
		Added:         r.Added,
		DailyTarget:   r.DailyTarget,
		TargetReason:  r.TargetReason,
		PoolExhausted: r.PoolExhausted,
		WeekCompleted: r.WeekCompleted,
	}
}

// CompleteRequest records an outreach result.
type CompleteRequest struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	ActivityType string `json:"activityType" validate:"required,oneof=call email message meeting"`
	Outcome      string `json:"outcome" validate:"required,oneof=connected pitched demo_scheduled voicemail no_answer busy not_interested wrong_number"`
	Note         string `json:"note" validate:"omitempty,max=2000"`
}

// DayActionRequest carries the cycle date for skip.
type DayActionRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SnoozeRequest puts a lead to sleep.
type SnoozeRequest struct {
	Date  string    `json:"date" validate:"required,datetime=2006-01-02"`
	Until time.Time `json:"until" validate:"required"`
}

// RemoveRequest takes a lead out of circulation.
type RemoveRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
	Permanent bool   `json:"permanent"`
}

// ActionResponse is the mutation result payload.
type ActionResponse struct {
	Date            string `json:"date"`
	CompletionKind  string `json:"completionKind,omitempty"`
	CompletedToday  int    `json:"completedToday"`
	DailyTarget     int    `json:"dailyTarget"`
	DailyTargetMet  bool   `json:"dailyTargetMet"`
	WeeklyTargetMet bool   `json:"weeklyTargetMet"`
	WeekCompleted   int    `json:"weekCompleted"`
}

// ToActionResponse converts a cycle action result.
func ToActionResponse(r *cycle.ActionResult) ActionResponse {
	return ActionResponse{
		Date:            r.Date,
		CompletionKind:  string(r.CompletionKind),
		CompletedToday:  r.CompletedToday,
		DailyTarget:     r.DailyTarget,
		DailyTargetMet:  r.DailyTargetMet,
		WeeklyTargetMet: r.WeeklyTargetMet,
		WeekCompleted:   r.WeekCompleted,
	}
}

// SettingsRequest updates the engine settings.
type SettingsRequest struct {
	DailyTarget   int     `json:"dailyTarget" validate:"required,gt=0,lte=500"`
	WeeklyTarget  int     `json:"weeklyTarget" validate:"required,gt=0,lte=2500"`
	Strategy      string  `json:"strategy" validate:"required,oneof=optimal speed revenue"`
	Role          string  `json:"role" validate:"omitempty,max=100"`
	YearlyQuota   float64 `json:"yearlyQuota" validate:"omitempty,gte=0"`
	PipelineCover float64 `json:"pipelineCover" validate:"omitempty,gte=0"`
	Timezone      string  `json:"timezone" validate:"required,max=64"`
	DigestEnabled bool    `json:"digestEnabled"`
}

// SettingsResponse is the settings payload.
type SettingsResponse struct {
	DailyTarget   int     `json:"dailyTarget"`
	WeeklyTarget  int     `json:"weeklyTarget"`
	Strategy      string  `json:"strategy"`
	Role          string  `json:"role,omitempty"`
	YearlyQuota   float64 `json:"yearlyQuota,omitempty"`
	PipelineCover float64 `json:"pipelineCover,omitempty"`
	Timezone      string  `json:"timezone"`
	DigestEnabled bool    `json:"digestEnabled"`
}

// ToSettingsResponse converts domain settings.
func ToSettingsResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		DailyTarget:   s.DailyTarget,
		WeeklyTarget:  s.WeeklyTarget,
		Strategy:      string(s.Strategy),
		Role:          s.Role,
		YearlyQuota:   s.YearlyQuota,
		PipelineCover: s.PipelineCover,
		Timezone:      s.Timezone,
		DigestEnabled: s.DigestEnabled,
	}
}
