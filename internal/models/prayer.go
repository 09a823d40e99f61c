package models

import "time"

// PrayerRequest is submitted by a visitor. PrayerCount only grows; repeat
// prayers from the same caller are not suppressed.
type PrayerRequest struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Request     string    `json:"request" db:"request"`
	IsPublic    bool      `json:"isPublic" db:"is_public"`
	PrayerCount int       `json:"prayerCount" db:"prayer_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type PrayerRequestInput struct {
	Name     string  `json:"name" validate:"required"`
	Email    *string `json:"email,omitempty"`
	Request  string  `json:"request" validate:"required"`
	IsPublic bool    `json:"isPublic"`
}

func (in *PrayerRequestInput) ToPrayerRequest() PrayerRequest {
	return PrayerRequest{
		Name:     in.Name,
		Email:    in.Email,
		Request:  in.Request,
		IsPublic: in.IsPublic,
	}
}
