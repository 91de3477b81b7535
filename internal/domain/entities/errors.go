package entities

import "errors"

// Error kinds surfaced across the domain boundary
var (
	// ErrSchemaLoad is returned when the schema file is missing or not valid JSON.
	ErrSchemaLoad = errors.New("schema load failed")

	// ErrSchemaCompile is returned when the schema cannot be compiled.
	ErrSchemaCompile = errors.New("schema compile failed")

	// ErrParse is returned when an input document is not valid JSON.
	ErrParse = errors.New("invalid JSON")

	// ErrMapping is returned when an SPDX document lacks required structure.
	ErrMapping = errors.New("invalid SPDX document")

	// ErrUsage is returned when a command is invoked with missing or bad arguments.
	ErrUsage = errors.New("usage error")

	// ErrSigning is returned when an attestation cannot be signed.
	ErrSigning = errors.New("signing failed")
)
