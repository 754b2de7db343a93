package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskDeliveryLogPurge = "notification.deliverylog.purge"

// DeliveryLogPurgePayload carries the retention window for one purge run.
type DeliveryLogPurgePayload struct {
	Retention time.Duration `json:"retention"`
}

func NewDeliveryLogPurgeTask(payload DeliveryLogPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryLogPurge, data), nil
}

func ParseDeliveryLogPurgePayload(task *asynq.Task) (DeliveryLogPurgePayload, error) {
	var payload DeliveryLogPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DeliveryLogPurgePayload{}, err
	}
	return payload, nil
}
