package model

import "time"

// Payment statuses.  A seed payment created alongside a new subscription
// starts pending; payments recorded against a due date become paid or
// late depending on when the money arrived.
const (
    PaymentPending = "pending"
    PaymentPaid    = "paid"
    PaymentLate    = "late"
)

// Payment records money received (or expected) for a subscription.  The
// due date is copied from the subscription's next_payment_date at
// creation time; recording a payment pushes that date forward by one
// calendar month.
//
// Fields:
//  ID             – primary key identifier.
//  SubscriptionID – subscription being paid.
//  Amount         – amount received.
//  PaymentDate    – day the payment was made.
//  DueDate        – day the payment was due.
//  Status         – pending, paid or late.
//  CreatedAt      – creation timestamp.
type Payment struct {
    ID             uint64    // payments.id
    SubscriptionID uint64    // payments.subscription_id
    Amount         float64   // payments.amount
    PaymentDate    time.Time // payments.payment_date (DATE)
    DueDate        time.Time // payments.due_date (DATE)
    Status         string    // payments.status
    CreatedAt      time.Time // payments.created_at
}
