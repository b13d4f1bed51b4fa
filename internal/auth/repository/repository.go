package repository

import authdomain "faktury-backend/internal/auth/domain"

// TokenRepository is the durable store for the singleton credential record
type TokenRepository interface {
	// Get returns the stored record, or (nil, nil) when none exists
	Get() (*authdomain.AuthTokens, error)

	// Save overwrites the singleton record
	Save(tokens *authdomain.AuthTokens) error

	// Clear deletes the record (logout or unrecoverable refresh failure)
	Clear() error
}
