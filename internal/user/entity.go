package user

import "time"

const ProviderCredential = "credential"

type User struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	IsDemo    bool      `gorm:"not null;default:false" json:"isDemo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Account holds a credential for a user. Password is a hash and never leaves the server.
type Account struct {
	ID         string    `gorm:"primaryKey;size:26" json:"id"`
	UserID     string    `gorm:"index;size:26;not null" json:"userId"`
	ProviderID string    `gorm:"not null" json:"providerId"`
	Password   string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}
