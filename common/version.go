package common

import (
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 1
	patch = 0

	// Versions from which the storage can be opened without migration.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version of the storage schema written by this code.
	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// ErrVersionMismatch is returned by CheckVersion for storages that can't be
// served by the current code.
var ErrVersionMismatch = errors.New("storage version mismatch")

// CheckVersion checks that the storage written by version from can be opened.
// Storages of newer versions are rejected as well as those older than
// PrevVersion.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: storage is of newer version %d, current is %d", ErrVersionMismatch, from, Version)
	}
	return nil
}
