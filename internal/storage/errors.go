package storage

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when attempting to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrExpired is returned by ConsumeDownload when the token is past its expiry.
	ErrExpired = errors.New("token expired")

	// ErrQuotaExhausted is returned by ConsumeDownload when the download quota is used up.
	ErrQuotaExhausted = errors.New("download quota exhausted")

	// ErrUnknownSetting is returned when writing a setting key outside the recognized set.
	ErrUnknownSetting = errors.New("unknown setting key")
)
