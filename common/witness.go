package common

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrOwnerWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrOwnerWitnessFailed = errors.New("owner witness check failed")
	// ErrWitnessFailed appears when the method must be called
	// by certain identity but was not.
	ErrWitnessFailed = errors.New("witness check failed")
)

// CheckWitness returns true if h is among signers of the invocation.
func (ic *Context) CheckWitness(h util.Uint160) bool {
	for i := range ic.signers {
		if ic.signers[i].Equals(h) {
			return true
		}
	}
	return false
}

// CheckOwnerWitness checks that the stored owner of an account is the
// identity named by the caller and that it signed the invocation.
// It returns ErrOwnerWitnessFailed on fail.
func CheckOwnerWitness(ic *Context, stored, caller util.Uint160) error {
	if !stored.Equals(caller) || !ic.CheckWitness(stored) {
		return ErrOwnerWitnessFailed
	}
	return nil
}

// CheckWitness checks witness of the passed caller.
// It returns ErrWitnessFailed on fail.
func CheckWitness(ic *Context, caller util.Uint160) error {
	if !ic.CheckWitness(caller) {
		return ErrWitnessFailed
	}
	return nil
}
