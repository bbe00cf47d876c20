package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDriftCheck = "monitor.drift.check"

type DriftCheckPayload struct {
	TriggeredBy string `json:"triggeredBy"`
}

func NewDriftCheckTask(payload DriftCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDriftCheck, data), nil
}

func ParseDriftCheckPayload(task *asynq.Task) (DriftCheckPayload, error) {
	var payload DriftCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DriftCheckPayload{}, err
	}
	return payload, nil
}
