package common

import (
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DeriveAddress returns deterministic key-less address of the account
// identified by domain tag and its owner. There is exactly one address per
// (tag, owner) pair.
func DeriveAddress(tag string, owner util.Uint160) util.Uint160 {
	return hash.Hash160(append([]byte(tag), owner.BytesBE()...))
}

// NameHash returns identity of the named ledger component. It is used as
// the emitter of component notifications.
func NameHash(name string) util.Uint160 {
	return hash.Hash160([]byte(name))
}
