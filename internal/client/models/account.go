// Package models defines the records the client keeps in its local database.
package models

import "time"

// Account is a local-strategy credential record. Role is embedded so the
// local store can create the matching profile without a second input.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
	CreatedAt    time.Time
}
