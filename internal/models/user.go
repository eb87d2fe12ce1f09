package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	ID           uint      `gorm:"primaryKey" bson:"_id"`
	Name         string    `gorm:"size:100;not null" bson:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" bson:"email"`
	PasswordHash string    `gorm:"size:255;not null" bson:"password_hash"`
	Role         UserRole  `gorm:"size:20;not null" bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}
