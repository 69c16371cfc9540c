package model

import "time"

// UserData holds the latest snapshot for one user. Rows are only ever
// replaced whole.
type UserData struct {
	Username    string    `gorm:"primaryKey;size:191" json:"username"`
	StateJSON   string    `gorm:"type:text;not null" json:"state_json"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

func (UserData) TableName() string {
	return "user_data"
}
