package model

import "time"

// Notification types.  info is used for routine messages such as
// upcoming payments; alert marks conditions needing owner attention
// (overdue payments, rejected delivery assignments).
const (
    NotificationInfo  = "info"
    NotificationAlert = "alert"
)

// Notification is a message addressed to an owner.  Notifications are
// generated by the payment sweep, by failed operations and by explicit
// owner actions.  SubscriptionID links sweep-generated rows back to the
// subscription that triggered them so the sweep stays idempotent.
//
// Fields:
//  ID             – primary key identifier.
//  RecipientID    – owner receiving the notification.
//  SubscriptionID – subscription that triggered the row (nil when not
//                   generated by the payment sweep).
//  Message        – human readable text.
//  Type           – info or alert.
//  Read           – whether the owner has seen it.
//  CreatedAt      – creation timestamp.
type Notification struct {
    ID             uint64    // notifications.id
    RecipientID    uint64    // notifications.recipient_id
    SubscriptionID *uint64   // notifications.subscription_id (nullable)
    Message        string    // notifications.message
    Type           string    // notifications.type
    Read           bool      // notifications.read
    CreatedAt      time.Time // notifications.created_at
}
