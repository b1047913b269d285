package source

import "codeberg.org/mutker/battdiag/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig  = errors.ErrInvalidConfig
	ErrUnknownBackend = errors.ErrorCode("source_unknown_backend")
	ErrInvalidBaseURL = errors.ErrorCode("source_invalid_base_url")
	ErrInvalidDBPath  = errors.ErrorCode("source_invalid_db_path")

	// Transport Errors
	ErrTransportInit = errors.ErrorCode("source_transport_init_failed")
	ErrRequestFailed = errors.ErrorCode("source_request_failed")
	ErrBadStatus     = errors.ErrorCode("source_bad_status")
	ErrDecodeFailed  = errors.ErrorCode("source_decode_failed")

	// Storage Errors
	ErrStorageInit            = errors.ErrInitFailed
	ErrSchemaValidationFailed = errors.ErrorCode("source_schema_validation_failed")
	ErrStorageAccess          = errors.ErrorCode("source_storage_access_failed")
	ErrStorageClose           = errors.ErrShutdownFailed

	// Lookup Errors
	ErrNotFound = errors.ErrResourceNotFound
)
