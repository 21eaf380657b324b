package models

type Stats struct {
	TotalAppointments     int64   `json:"totalAppointments"`
	CompletedAppointments int64   `json:"completedAppointments"`
	TotalRevenue          float64 `json:"totalRevenue"`
}

type CashTotals struct {
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	Total float64 `json:"total"`
}

type MasterCash struct {
	Name  string  `json:"name"`
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// CashRegister summarises completed appointments for a single day.
type CashRegister struct {
	Date              string                `json:"date"`
	Total             CashTotals            `json:"total"`
	AppointmentsCount int                   `json:"appointments_count"`
	Masters           map[string]MasterCash `json:"masters"`
}
