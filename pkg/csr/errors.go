package csr

import "errors"

var (
	// ErrInvalidMagic is returned by Load when the header's magic number
	// does not match the expected "FRGE" value.
	ErrInvalidMagic = errors.New("csr: invalid magic number")
	// ErrUnsupportedVersion is returned by Load when the header's schema
	// version is not one this package knows how to decode.
	ErrUnsupportedVersion = errors.New("csr: unsupported schema version")
)
