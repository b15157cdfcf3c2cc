package models

import "time"

type Profile struct {
	UID         string
	Role        string
	DisplayName string
	Email       string
	FarmID      string
	CreatedAt   time.Time
}
