package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskExtractClaimPhone = "claims.extract_phone"

type ExtractClaimPhonePayload struct {
	ClaimID string `json:"claimId"`
}

func NewExtractClaimPhoneTask(payload ExtractClaimPhonePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExtractClaimPhone, data), nil
}

func ParseExtractClaimPhonePayload(task *asynq.Task) (ExtractClaimPhonePayload, error) {
	var payload ExtractClaimPhonePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ExtractClaimPhonePayload{}, err
	}
	return payload, nil
}
