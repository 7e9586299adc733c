// Package scheduler runs the background jobs: archiving closed ledgers and
// purging expired cycle states.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLedgerArchive = "speedrun.ledger.archive"

const TaskRetentionPurge = "speedrun.retention.purge"

type LedgerArchivePayload struct {
	RepID string `json:"repId"`
	Date  string `json:"date"`
}

type RetentionPurgePayload struct {
	CutoffDate string `json:"cutoffDate"`
}

func NewLedgerArchiveTask(payload LedgerArchivePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerArchive, data), nil
}

func ParseLedgerArchivePayload(task *asynq.Task) (LedgerArchivePayload, error) {
	var payload LedgerArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LedgerArchivePayload{}, err
	}
	return payload, nil
}

func NewRetentionPurgeTask(payload RetentionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetentionPurge, data), nil
}

func ParseRetentionPurgePayload(task *asynq.Task) (RetentionPurgePayload, error) {
	var payload RetentionPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RetentionPurgePayload{}, err
	}
	return payload, nil
}
