// Package testutil provides testing utilities for sage.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockStoreUnavailable indicates a mock task store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("task store unavailable")

	// ErrMockDiskFull indicates a mock disk-full write failure (used in tests).
	ErrMockDiskFull = errors.New("disk full")

	// ErrMockStepLogFailed indicates a mock step log persistence failure (used in tests).
	ErrMockStepLogFailed = errors.New("step log write failed")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")
)
