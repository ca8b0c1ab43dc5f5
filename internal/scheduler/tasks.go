// Package scheduler provides the durable delayed task queue for the loan
// pipeline, backed by asynq on Redis.
package scheduler

import (
	"encoding/json"
	"fmt"

	"loanflow_backend/internal/loans/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskLoanStage = "loans.stage"

type LoanStagePayload struct {
	ApplicationID string `json:"applicationId"`
	AgentType     string `json:"agentType"`
}

// StageTaskID is the deterministic task ID for a (application, agent) pair.
// Asynq rejects a second enqueue with the same ID while the first is
// pending, which makes stage scheduling at-most-once.
func StageTaskID(applicationID uuid.UUID, agentType domain.AgentType) string {
	return fmt.Sprintf("loan:stage:%s:%s", applicationID, agentType)
}

func NewLoanStageTask(payload LoanStagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoanStage, data), nil
}

func ParseLoanStagePayload(task *asynq.Task) (LoanStagePayload, error) {
	var payload LoanStagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LoanStagePayload{}, err
	}
	return payload, nil
}
