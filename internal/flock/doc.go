// Package flock provides cross-platform file locking utilities.
//
// The task store serializes mutations through an exclusive non-blocking
// lock on a well-known lock file; this package hides the Unix/Windows
// difference behind two calls.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
