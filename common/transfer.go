package common

import (
	"errors"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ErrInsufficientFunds is returned when an account can't cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Transferer moves native value units between identities. Implementations
// must write through ic.Store, so that the movement is discarded together
// with the rest of the failed operation.
type Transferer interface {
	TransferNative(ic *Context, from, to util.Uint160, amount uint64, details []byte) error
}

var (
	mintPrefix     = []byte{0x01}
	burnPrefix     = []byte{0x02}
	vaultPrefix    = []byte{0x03}
	escrowPrefix   = []byte{0x04}
	platformPrefix = []byte{0x10}
)

func MintTransferDetails(txDetails []byte) []byte {
	return append(mintPrefix, txDetails...)
}

func BurnTransferDetails(txDetails []byte) []byte {
	return append(burnPrefix, txDetails...)
}

// VaultTransferDetails marks movements into or out of a company vault.
func VaultTransferDetails(vault util.Uint160) []byte {
	return append(vaultPrefix, vault.BytesBE()...)
}

// EscrowTransferDetails marks movements into or out of a bounty escrow.
func EscrowTransferDetails(bountyID string) []byte {
	return append(escrowPrefix, bountyID...)
}

// PlatformFeeTransferDetails marks platform fee payments.
func PlatformFeeTransferDetails(bountyID string) []byte {
	return append(platformPrefix, bountyID...)
}

// IntItem converts native amount to a notification argument.
func IntItem(v uint64) stackitem.Item {
	return stackitem.NewBigInteger(new(big.Int).SetUint64(v))
}
