package model

import "time"

// Customer is a newspaper reader with a delivery address.  Customers are
// not owned by a single tenant in storage; an owner sees the customers
// that hold subscriptions to the owner's newspapers.
type Customer struct {
    ID        uint64    // customers.id
    Name      string    // customers.name
    Email     string    // customers.email
    Address   string    // customers.address
    Phone     *string   // customers.phone (nullable)
    CreatedAt time.Time // customers.created_at
    UpdatedAt time.Time // customers.updated_at
}
