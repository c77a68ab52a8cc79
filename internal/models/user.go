package models

import "time"

// User is a registered account. Every recipe, marker and subscription row
// references a user and is removed with it.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex:idx_users_email;uniqueIndex:idx_users_username_email,priority:2" json:"email"`
	Username     string    `gorm:"size:150;not null;uniqueIndex:idx_users_username;uniqueIndex:idx_users_username_email,priority:1" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Subscription is a follow edge from UserID (the follower) to AuthorID.
type Subscription struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscriptions_user_author,priority:1;check:chk_subscriptions_no_self_follow,user_id <> author_id"`
	User      User `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint `gorm:"not null;index;uniqueIndex:idx_subscriptions_user_author,priority:2"`
	Author    User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
