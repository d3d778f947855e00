package services

import "github.com/pkg/errors"

var (
	ErrModelNotFound    = errors.New("model not found")
	ErrNoSample         = errors.New("no sample document")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrIndexNotFound    = errors.New("index not found")
	ErrMappingConflict  = errors.New("mapping conflict")
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrInvalidIndexName = errors.New("invalid index name")
)
