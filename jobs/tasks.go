// Package jobs runs background work over Asynq: the scheduled ledger
// integrity scan and the queue plumbing around it.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the task type for the ledger integrity scan.
	TaskLedgerIntegrity = "ledger:integrity"
)

// LedgerIntegrityPayload identifies one integrity run so its findings can be
// correlated across logs.
type LedgerIntegrityPayload struct {
	RunID string `json:"run_id"`
}

// NewLedgerIntegrityTask constructs an integrity scan task with a fresh run id.
func NewLedgerIntegrityTask() (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{RunID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}
