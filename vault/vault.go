package vault

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vulnera/custody/common"
	"go.uber.org/zap"
)

// Vault is a company vault record.
type Vault struct {
	// Owner is the only identity allowed to deposit and withdraw.
	Owner util.Uint160
	// Balance of the vault in native value units.
	Balance uint64
	// DepositTimestamp is the time of the latest deposit in seconds.
	DepositTimestamp int64
}

const (
	// Tag is the domain tag of vault addresses.
	Tag = "company-vault"

	// LockupDuration is the time in seconds after the latest deposit during
	// which the vault can't be withdrawn from (15 days).
	LockupDuration = 15 * 24 * 60 * 60

	// StoragePrefix is the storage prefix of vault records.
	StoragePrefix = 'v'
)

var (
	// ErrZeroDeposit is returned for deposits of zero amount.
	ErrZeroDeposit = errors.New("cannot deposit zero amount")
	// ErrZeroWithdrawal is returned for withdrawals of zero amount.
	ErrZeroWithdrawal = errors.New("withdrawal amount must be greater than zero")
	// ErrLockupPeriodNotExpired is returned for withdrawals made earlier than
	// LockupDuration after the latest deposit.
	ErrLockupPeriodNotExpired = errors.New("lock-up period of 15 days has not expired yet")
)

// Hash is the identity vault notifications are emitted on behalf of.
var Hash = common.NameHash("vault")

// Address returns derived address of the owner's vault. The address is also
// the native wallet holding vault funds.
func Address(owner util.Uint160) util.Uint160 {
	return common.DeriveAddress(Tag, owner)
}

// EncodeBinary implements io.Serializable.
func (v *Vault) EncodeBinary(w *io.BinWriter) {
	v.Owner.EncodeBinary(w)
	w.WriteU64LE(v.Balance)
	w.WriteU64LE(uint64(v.DepositTimestamp))
}

// DecodeBinary implements io.Serializable.
func (v *Vault) DecodeBinary(r *io.BinReader) {
	v.Owner.DecodeBinary(r)
	v.Balance = r.ReadU64LE()
	v.DepositTimestamp = int64(r.ReadU64LE())
}

// UnlockTime returns the first second withdrawals are allowed at.
func (v Vault) UnlockTime() (int64, error) {
	return common.AddInt64(v.DepositTimestamp, LockupDuration)
}

// Initialize creates an empty vault of the owner. It must be witnessed by
// the owner and fails with common.ErrAlreadyInitialized if the owner has a
// vault already.
func Initialize(ic *common.Context, owner util.Uint160) error {
	if err := common.CheckWitness(ic, owner); err != nil {
		return err
	}

	key := common.Key(StoragePrefix, Address(owner))

	ok, err := common.Exists(ic.Store, key)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("vault of %s: %w", owner.StringLE(), common.ErrAlreadyInitialized)
	}

	err = common.SetSerialized(ic.Store, key, &Vault{Owner: owner})
	if err != nil {
		return err
	}

	ic.Log.Debug("vault initialized", zap.Stringer("owner", owner))

	return nil
}

// Deposit moves amount from the owner's wallet into the vault. Every deposit
// resets the lock-up clock of the whole vault balance.
//
// It produces Deposit notification.
func Deposit(ic *common.Context, owner util.Uint160, amount uint64) error {
	addr := Address(owner)

	v, err := getOwned(ic, owner, addr)
	if err != nil {
		return err
	}

	if amount == 0 {
		return ErrZeroDeposit
	}

	err = ic.Native.TransferNative(ic, owner, addr, amount, common.VaultTransferDetails(addr))
	if err != nil {
		return fmt.Errorf("transfer to vault: %w", err)
	}

	v.Balance, err = common.Add(v.Balance, amount)
	if err != nil {
		return err
	}
	v.DepositTimestamp = ic.Time()

	err = common.SetSerialized(ic.Store, common.Key(StoragePrefix, addr), &v)
	if err != nil {
		return err
	}

	ic.Notify(Hash, "Deposit",
		stackitem.NewByteArray(owner.BytesBE()),
		common.IntItem(amount),
		stackitem.Make(v.DepositTimestamp),
	)

	return nil
}

// Withdraw moves amount from the vault to the recipient. Recipient is any
// identity the owner names. Withdraw is allowed only when LockupDuration has
// passed since the latest deposit.
//
// It produces Withdraw notification.
func Withdraw(ic *common.Context, owner util.Uint160, amount uint64, recipient util.Uint160) error {
	addr := Address(owner)

	v, err := getOwned(ic, owner, addr)
	if err != nil {
		return err
	}

	unlock, err := v.UnlockTime()
	if err != nil {
		return err
	}

	if ic.Time() < unlock {
		return ErrLockupPeriodNotExpired
	}

	if amount == 0 {
		return ErrZeroWithdrawal
	}

	if amount > v.Balance {
		return fmt.Errorf("%w: vault has %d, requested %d", common.ErrInsufficientFunds, v.Balance, amount)
	}

	v.Balance, err = common.Sub(v.Balance, amount)
	if err != nil {
		return err
	}

	err = ic.Native.TransferNative(ic, addr, recipient, amount, common.VaultTransferDetails(addr))
	if err != nil {
		return fmt.Errorf("transfer from vault: %w", err)
	}

	err = common.SetSerialized(ic.Store, common.Key(StoragePrefix, addr), &v)
	if err != nil {
		return err
	}

	ic.Notify(Hash, "Withdraw",
		stackitem.NewByteArray(recipient.BytesBE()),
		common.IntItem(amount),
		stackitem.Make(ic.Time()),
	)

	return nil
}

// Get returns the vault of the owner or common.ErrAccountNotFound.
func Get(st *storage.MemCachedStore, owner util.Uint160) (Vault, error) {
	var v Vault

	err := common.GetSerialized(st, common.Key(StoragePrefix, Address(owner)), &v)
	if err != nil {
		return Vault{}, fmt.Errorf("vault of %s: %w", owner.StringLE(), err)
	}

	return v, nil
}

// getOwned checks owner witness and reads the vault.
func getOwned(ic *common.Context, owner, addr util.Uint160) (Vault, error) {
	if !ic.CheckWitness(owner) {
		return Vault{}, common.ErrOwnerWitnessFailed
	}

	var v Vault

	err := common.GetSerialized(ic.Store, common.Key(StoragePrefix, addr), &v)
	if err != nil {
		return Vault{}, fmt.Errorf("vault of %s: %w", owner.StringLE(), err)
	}

	if err := common.CheckOwnerWitness(ic, v.Owner, owner); err != nil {
		return Vault{}, err
	}

	return v, nil
}
