package models

import "time"

// Singer is a member of the music ministry line-up.
type Singer struct {
	ID        string    `json:"id" db:"id"`
	Fname     string    `json:"Fname" db:"fname"`
	Mname     *string   `json:"Mname,omitempty" db:"mname"`
	Lname     *string   `json:"Lname,omitempty" db:"lname"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SingerRequest struct {
	Fname string  `json:"Fname" validate:"required"`
	Mname *string `json:"Mname,omitempty"`
	Lname *string `json:"Lname,omitempty"`
}

// ToSinger copies the three name fields onto a new Singer.
func (r *SingerRequest) ToSinger() Singer {
	return Singer{
		Fname: r.Fname,
		Mname: r.Mname,
		Lname: r.Lname,
	}
}
