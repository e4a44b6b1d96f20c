package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestDeliveryTerminal(t *testing.T) {
    assert.True(t, DeliveryTerminal(DeliveryDelivered))
    assert.True(t, DeliveryTerminal(DeliveryFailed))
    assert.False(t, DeliveryTerminal(DeliveryPending))
    assert.False(t, DeliveryTerminal(""))
    assert.False(t, DeliveryTerminal("DELIVERED"))
}

func TestCanTransitionDelivery(t *testing.T) {
    assert.True(t, CanTransitionDelivery(DeliveryPending, DeliveryDelivered))
    assert.True(t, CanTransitionDelivery(DeliveryPending, DeliveryFailed))

    // Terminal states accept nothing, not even a repeat of themselves.
    assert.False(t, CanTransitionDelivery(DeliveryDelivered, DeliveryFailed))
    assert.False(t, CanTransitionDelivery(DeliveryDelivered, DeliveryDelivered))
    assert.False(t, CanTransitionDelivery(DeliveryFailed, DeliveryDelivered))

    // Pending is not a transition target.
    assert.False(t, CanTransitionDelivery(DeliveryPending, DeliveryPending))
    assert.False(t, CanTransitionDelivery(DeliveryPending, "lost"))
}

func TestValidSubscriptionStatus(t *testing.T) {
    assert.True(t, ValidSubscriptionStatus(SubscriptionActive))
    assert.True(t, ValidSubscriptionStatus(SubscriptionSuspended))
    assert.True(t, ValidSubscriptionStatus(SubscriptionCancelled))
    assert.False(t, ValidSubscriptionStatus("paused"))
    assert.False(t, ValidSubscriptionStatus(""))
}

func TestValidEmployeeRole(t *testing.T) {
    assert.True(t, ValidEmployeeRole(EmployeeRoleDelivery))
    assert.True(t, ValidEmployeeRole(EmployeeRoleManager))
    assert.True(t, ValidEmployeeRole(EmployeeRoleAdmin))
    assert.False(t, ValidEmployeeRole("driver"))
    assert.False(t, ValidEmployeeRole(""))
}
