package activity

import "time"

const TypeComment = "comment"

type Activity struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	TaskID    string    `gorm:"index;size:26;not null" json:"taskId"`
	UserID    *string   `gorm:"size:26" json:"userId"`
	Type      string    `gorm:"not null" json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Activity) TableName() string {
	return "activities"
}

// Entry is an activity joined with the author's name.
type Entry struct {
	Activity
	UserName *string `json:"userName"`
}
