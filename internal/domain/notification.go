package domain

// Recipient is one addressee of a notification batch.
type Recipient struct {
	UserID  string
	Address string
	Name    string
	Data    map[string]any
}

// NotificationBatch is handed to the email transport in a single call.
type NotificationBatch struct {
	ID         string
	TemplateID string
	Subject    string
	Recipients []Recipient
}

// DeliveryResult is the transport's verdict for one recipient.
type DeliveryResult struct {
	Address string
	Err     error
}

// Delivered reports whether the recipient was accepted by the transport.
func (r DeliveryResult) Delivered() bool {
	return r.Err == nil
}
