package domain

import (
	core "github.com/cuongbtq/jobboard/internal/domain"
)

// TriggerPayload is the JSON body of a pass trigger message
type TriggerPayload struct {
	PassID string `json:"pass_id"`
	Kind   string `json:"kind"`
}

// PassMessage represents a validated pass trigger from RabbitMQ
type PassMessage struct {
	PassID      string
	Kind        core.PassKind
	DeliveryTag uint64
	Redelivered bool
}
