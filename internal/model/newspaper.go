package model

import "time"

// Newspaper is a title distributed by an owner.  Each newspaper belongs
// exclusively to one owner; subscriptions and deliveries reference it.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the newspaper owner.
//  Name      – short name of the paper.
//  Title     – full masthead title.
//  Publisher – publishing house.
//  Frequency – publication cadence (e.g. daily, weekly).
//  Price     – per-unit price.
//  CreatedAt – timestamp when the newspaper was created.
//  UpdatedAt – timestamp of last update.
type Newspaper struct {
    ID        uint64    // newspapers.id
    OwnerID   uint64    // newspapers.owner_id
    Name      string    // newspapers.name
    Title     string    // newspapers.title
    Publisher string    // newspapers.publisher
    Frequency string    // newspapers.frequency
    Price     float64   // newspapers.price
    CreatedAt time.Time // newspapers.created_at
    UpdatedAt time.Time // newspapers.updated_at
}
