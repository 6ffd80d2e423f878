package model

import "errors"

// Domain errors. Handlers map these onto API error codes.
var (
	ErrSetNotFound         = errors.New("set not found in catalog")
	ErrCaseNotFound        = errors.New("case not found")
	ErrCaseFull            = errors.New("case is already full")
	ErrSlabNotFound        = errors.New("slab not found")
	ErrSlabExists          = errors.New("slab already exists")
	ErrInvalidCertNumber   = errors.New("certificate number must be digits only")
	ErrInvalidStatus       = errors.New("invalid slab status")
	ErrInvalidTransition   = errors.New("invalid slab status transition")
	ErrInvalidSequence     = errors.New("invalid sequential set")
	ErrGradingUnconfigured = errors.New("grading service is not configured")
	ErrUnknownImportType   = errors.New("unknown import type")
)
