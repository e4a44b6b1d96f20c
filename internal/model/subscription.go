package model

import "time"

// Subscription statuses.  A subscription is created active and is never
// hard-deleted: cancellation is a soft status transition and cancelled
// rows simply drop out of active views.
const (
    SubscriptionActive    = "active"
    SubscriptionSuspended = "suspended"
    SubscriptionCancelled = "cancelled"
)

// Subscription links a customer to a newspaper and carries the payment
// schedule for that link.  Invariants: MonthlyFee > 0 and EndDate, when
// present, is never earlier than StartDate.  NextPaymentDate drives both
// payment due dates and the overdue/due-soon notification sweep.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – subscribing customer.
//  NewspaperID     – newspaper being delivered.
//  StartDate       – first day of the subscription.
//  EndDate         – last day (nil = ongoing).
//  Status          – active, suspended or cancelled.
//  MonthlyFee      – recurring fee charged per month.
//  NextPaymentDate – due date of the next expected payment.
//  CreatedAt       – creation timestamp.
type Subscription struct {
    ID              uint64     // subscriptions.id
    CustomerID      uint64     // subscriptions.customer_id
    NewspaperID     uint64     // subscriptions.newspaper_id
    StartDate       time.Time  // subscriptions.start_date (DATE)
    EndDate         *time.Time // subscriptions.end_date (DATE, nullable)
    Status          string     // subscriptions.status
    MonthlyFee      float64    // subscriptions.monthly_fee
    NextPaymentDate time.Time  // subscriptions.next_payment_date (DATE)
    CreatedAt       time.Time  // subscriptions.created_at
}

// ValidSubscriptionStatus reports whether status is a recognized
// subscription status value.
func ValidSubscriptionStatus(status string) bool {
    switch status {
    case SubscriptionActive, SubscriptionSuspended, SubscriptionCancelled:
        return true
    }
    return false
}
