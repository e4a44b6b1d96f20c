// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentRecordedEvent is published when a subscription payment is
// recorded. It carries enough information for downstream consumers to
// log or trigger analytics without querying the primary database.
type PaymentRecordedEvent struct {
	PaymentID      uint64  `json:"payment_id"`
	SubscriptionID uint64  `json:"subscription_id"`
	OwnerID        uint64  `json:"owner_id"`
	CustomerName   string  `json:"customer_name"`
	NewspaperTitle string  `json:"newspaper_title"`
	Amount         float64 `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	NextPaymentDue string  `json:"next_payment_due"`
	RecordedAt     string  `json:"recorded_at"`
}
