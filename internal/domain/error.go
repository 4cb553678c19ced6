package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrQuotaExhausted     = errors.New("no submission quota available")
	ErrConflict           = errors.New("concurrent update conflict")
	ErrCalculationLocked  = errors.New("calculation already in progress")
	ErrInvalidTransition  = errors.New("invalid submission status transition")
	ErrProcessorFailure   = errors.New("tax processor call failed")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrInvalidExecContext = errors.New("invalid transaction context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
