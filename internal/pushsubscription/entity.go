package pushsubscription

import "time"

type Subscription struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	UserID    string    `gorm:"index;size:26;not null" json:"userId"`
	Endpoint  string    `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dhKey string    `gorm:"not null" json:"p256dhKey"`
	AuthKey   string    `gorm:"not null" json:"authKey"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Subscription) TableName() string {
	return "push_subscriptions"
}
