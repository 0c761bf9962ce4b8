package user

import (
	"time"
)

// User 用户实体
type User struct {
	ID        string
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建用户(工厂方法)，密码需已哈希
func NewUser(email, hashedPassword, nickname string, roles []string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Roles:     append([]string(nil), roles...),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole 是否拥有角色
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
