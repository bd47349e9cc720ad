package dto

type TriggerPassRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type TriggerPassResponse struct {
	PassID string `json:"pass_id"`
	Kind   string `json:"kind"`
}

// TriggerMessage is the body published to the pass trigger queue
type TriggerMessage struct {
	PassID string `json:"pass_id"`
	Kind   string `json:"kind"`
}
