// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity service account. The password itself is never seen
// by the server: Salt and Verifier come from the client's key derivation.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Salt        []byte
	Verifier    []byte
	CreatedAt   time.Time
}
