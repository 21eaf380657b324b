package services

import (
	"errors"

	"want-salon-backend/repository"
	"want-salon-backend/utils"
)

// storageError turns a raw repository error into an AppError, keeping any
// AppError produced inside a transaction untouched.
func storageError(message string, err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrMasterNotFound):
		return utils.NotFound("Master", "", err)
	case errors.Is(err, repository.ErrAppointmentNotFound):
		return utils.NotFound("Appointment", "", err)
	case repository.IsUnavailable(err):
		return utils.Unavailable("Database", err)
	}
	return utils.Internal(message, err)
}

func masterNotFound(id int64) error {
	return utils.NotFound("Master", id, repository.ErrMasterNotFound)
}

func appointmentNotFound(id int64) error {
	return utils.NotFound("Appointment", id, repository.ErrAppointmentNotFound)
}
