package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrConfigUnavailable indicates no configuration could be obtained:
	// the local file is missing and the template could not be fetched.
	ErrConfigUnavailable = errors.New("configuration unavailable")

	// ErrFingerprintMismatch indicates a peer's fingerprint differs from
	// the local one.
	ErrFingerprintMismatch = errors.New("configuration fingerprint mismatch")

	// ErrNoSource indicates an operation needs a template or remote fetcher
	// and none was configured.
	ErrNoSource = errors.New("no configuration source")
)

// ParseError represents an error while parsing a configuration document.
type ParseError struct {
	// Path is the file path or URL of the document.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MismatchError carries both fingerprints of a failed handshake.
type MismatchError struct {
	// Local is this process's fingerprint.
	Local string
	// Peer is the fingerprint the peer announced.
	Peer string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("fingerprint mismatch: local %s, peer %s", e.Local, e.Peer)
}

// Is implements error matching for MismatchError.
func (e *MismatchError) Is(target error) bool {
	return target == ErrFingerprintMismatch
}
