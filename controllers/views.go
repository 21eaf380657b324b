package controllers

import (
	"strconv"

	"want-salon-backend/models"
)

type MasterResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Role   string  `json:"role"`
	Avatar *string `json:"avatar,omitempty"`
}

func masterResponse(m *models.Master) MasterResponse {
	return MasterResponse{
		ID:     strconv.FormatInt(m.ID, 10),
		Name:   m.Name,
		Color:  m.Color,
		Role:   m.Role,
		Avatar: m.Avatar,
	}
}

type AppointmentResponse struct {
	ID         string `json:"id"`
	MasterID   string `json:"masterId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Duration   int    `json:"duration"`
	ClientName string `json:"clientName"`
	Comment    string `json:"comment"`
	Status     string `json:"status"`

	// *models.Payment, an empty object, or null depending on the endpoint
	Payment any `json:"payment"`
}

type paymentMode int

const (
	// payment is null unless completed
	paymentNull paymentMode = iota
	// payment is {} unless completed
	paymentEmptyObject
)

func appointmentResponse(a *models.Appointment, mode paymentMode) AppointmentResponse {
	resp := AppointmentResponse{
		ID:         strconv.FormatInt(a.ID, 10),
		MasterID:   strconv.FormatInt(a.MasterID, 10),
		Date:       a.Date,
		Time:       a.Time,
		Duration:   a.Duration,
		ClientName: a.ClientName,
		Comment:    a.Comment,
		Status:     string(a.Status),
	}
	switch {
	case a.Status == models.StatusCompleted:
		p := a.Payment()
		resp.Payment = &p
	case mode == paymentEmptyObject:
		resp.Payment = struct{}{}
	}
	return resp
}

func appointmentResponses(list []models.Appointment, mode paymentMode) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, appointmentResponse(&list[i], mode))
	}
	return out
}
