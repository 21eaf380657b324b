package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the three known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const DefaultDuration = 60

type Appointment struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	MasterID int64 `gorm:"index;not null"`

	// Date is always YYYY-MM-DD so that string comparison orders it correctly.
	Date       string            `gorm:"type:varchar(10);index;not null"`
	Time       string            `gorm:"not null"`
	Duration   int               `gorm:"default:60"`
	ClientName string            `gorm:"not null"`
	Comment    string            `gorm:"type:text"`
	Status     AppointmentStatus `gorm:"type:varchar(20);index;default:'scheduled'"`

	CashPayment float64 `gorm:"type:decimal(10,2);default:0"`
	CardPayment float64 `gorm:"type:decimal(10,2);default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment is the cash/card split recorded when an appointment is completed.
type Payment struct {
	Cash float64 `json:"cash"`
	Card float64 `json:"card"`
}

func (p Payment) Total() float64 {
	return p.Cash + p.Card
}

func (a *Appointment) Payment() Payment {
	return Payment{Cash: a.CashPayment, Card: a.CardPayment}
}
