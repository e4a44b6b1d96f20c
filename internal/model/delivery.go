package model

import "time"

// Delivery statuses.  pending is the only non-terminal state: once a
// delivery is delivered or failed it can never change again.
const (
    DeliveryPending   = "pending"
    DeliveryDelivered = "delivered"
    DeliveryFailed    = "failed"
)

// Delivery is one drop of a newspaper at a customer's address by an
// employee.  Deliveries are only assigned when an active subscription
// links the customer and the newspaper; the check happens at assignment
// time so a cancelled subscription stops new deliveries immediately.
//
// Fields:
//  ID              – primary key identifier.
//  EmployeeID      – employee carrying out the delivery.
//  CustomerID      – customer receiving the paper.
//  NewspaperID     – newspaper being delivered.
//  DeliveryDate    – day of the delivery.
//  Status          – pending, delivered or failed.
//  StatusChangedAt – when the status last changed; terminal rows age out
//                    of the active worklist based on this timestamp.
//  CreatedAt       – creation timestamp.
type Delivery struct {
    ID              uint64    // deliveries.id
    EmployeeID      uint64    // deliveries.employee_id
    CustomerID      uint64    // deliveries.customer_id
    NewspaperID     uint64    // deliveries.newspaper_id
    DeliveryDate    time.Time // deliveries.delivery_date (DATE)
    Status          string    // deliveries.status
    StatusChangedAt time.Time // deliveries.status_changed_at
    CreatedAt       time.Time // deliveries.created_at
}

// DeliveryTerminal reports whether status is one of the terminal
// delivery states.
func DeliveryTerminal(status string) bool {
    return status == DeliveryDelivered || status == DeliveryFailed
}

// CanTransitionDelivery reports whether a delivery in state from may move
// to state to.  Only pending deliveries accept a transition, and only to
// a terminal state.
func CanTransitionDelivery(from, to string) bool {
    if from != DeliveryPending {
        return false
    }
    return to == DeliveryDelivered || to == DeliveryFailed
}
