package models

import "time"

const RoleMaster = "master"

type Master struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	Name       string  `gorm:"not null"`
	Color      string  `gorm:"type:varchar(20);not null;default:''"`
	TelegramID *int64  `gorm:"uniqueIndex"`
	Role       string  `gorm:"type:varchar(20);not null;default:'master'"`
	Avatar     *string `gorm:"type:text"`

	Appointments []Appointment `gorm:"foreignKey:MasterID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
