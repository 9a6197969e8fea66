package model

import (
	"time"
)

// 用户角色
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email         *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash  *string   `gorm:"size:255" json:"-"`
	AvatarURL     string    `gorm:"size:500" json:"avatar_url"`
	Role          string    `gorm:"size:20;default:user" json:"role"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff 是否持有平台管理角色
func (u *User) IsStaff() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
