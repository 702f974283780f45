package model

import "time"

// Theater represents a physical cinema location.  Screens reference a
// theater by ID (aggregation by reference); deleting a theater does not
// cascade into screens at the model level.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the theater.
//  Address   – street address.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Theater struct {
	ID        uint64    // theaters.id
	Name      string    // theaters.name
	Address   string    // theaters.address
	CreatedAt time.Time // theaters.created_at
	UpdatedAt time.Time // theaters.updated_at
}
