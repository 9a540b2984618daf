package domain

import "errors"

var (
	ErrInvalidTimeFormat     = errors.New("Format d'heure invalide. Utilisez /start HH:MM.")
	ErrInvalidDelayFormat    = errors.New("Format de délai invalide. Utilisez par exemple '1h30', '3m', '12:45', etc.")
	ErrNotRegistered         = errors.New("not registered")
	ErrDeliveryFailed        = errors.New("delivery failed")
	ErrRepositoryUnavailable = errors.New("repository unavailable")

	// ErrNotDue is returned by a fire attempt whose record was rescheduled
	// after the sweep snapshot was taken.
	ErrNotDue = errors.New("reminder no longer due")
)
