package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleCourier  Role = "courier"
	RoleOwner    Role = "owner"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Forename     string `gorm:"type:varchar(256);not null"`
	Surname      string `gorm:"type:varchar(256);not null"`
	Email        string `gorm:"type:varchar(256);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
