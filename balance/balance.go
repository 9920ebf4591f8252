package balance

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

type (
	// Token holds all token info.
	Token struct {
		// Ticker symbol
		Symbol string
		// Amount of decimals
		Decimals int
		// Storage key for circulation value
		CirculationKey string
	}

	// Account structure stores balance of each identity.
	Account struct {
		// Active balance
		Balance uint64
	}
)

const (
	symbol      = "CUSTODY"
	decimals    = 8
	circulation = "s"

	// AccountPrefix is the storage prefix of wallet accounts.
	AccountPrefix = 'a'
	// SupplyKey is the storage key of the total supply.
	SupplyKey = circulation
)

// Hash is the identity balance notifications are emitted on behalf of.
var Hash = common.NameHash("balance")

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// EncodeBinary implements io.Serializable.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(a.Balance)
}

// DecodeBinary implements io.Serializable.
func (a *Account) DecodeBinary(r *io.BinReader) {
	a.Balance = r.ReadU64LE()
}

// Native returns the token ledger as the native value transferer of the
// state machines.
func Native() common.Transferer {
	return token
}

// Symbol returns token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals returns precision of the balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply returns the amount of native value minted into the ledger and
// not burnt yet.
func TotalSupply(st *storage.MemCachedStore) (uint64, error) {
	return token.getSupply(st)
}

// BalanceOf returns balance of the specified identity. Unknown identities
// have zero balance.
func BalanceOf(st *storage.MemCachedStore, account util.Uint160) (uint64, error) {
	return token.balanceOf(st, account)
}

// Transfer transfers balance from one identity to another. It can be invoked
// only by the sender.
//
// It produces Transfer and TransferX notifications. TransferX notification
// will have empty details field.
func Transfer(ic *common.Context, from, to util.Uint160, amount uint64) error {
	if err := common.CheckWitness(ic, from); err != nil {
		return err
	}

	return token.transfer(ic, &from, &to, amount, nil)
}

// Mint transfers assets to the identity from an empty account, it is the way
// native value enters the ledger. Mint increases total supply.
//
// It produces Transfer and TransferX notifications.
func Mint(ic *common.Context, to util.Uint160, amount uint64, txDetails []byte) error {
	details := common.MintTransferDetails(txDetails)

	supply, err := token.getSupply(ic.Store)
	if err != nil {
		return err
	}

	supply, err = common.Add(supply, amount)
	if err != nil {
		return fmt.Errorf("total supply: %w", err)
	}

	err = token.transfer(ic, nil, &to, amount, details)
	if err != nil {
		return err
	}

	token.putSupply(ic.Store, supply)
	ic.Log.Debug("assets were minted", zap.Stringer("to", to), zap.Uint64("amount", amount))

	return nil
}

// Burn transfers assets from the identity to an empty account. It must be
// witnessed by the holder. Burn decreases total supply.
//
// It produces Transfer and TransferX notifications.
func Burn(ic *common.Context, from util.Uint160, amount uint64, txDetails []byte) error {
	if err := common.CheckWitness(ic, from); err != nil {
		return err
	}

	details := common.BurnTransferDetails(txDetails)

	err := token.transfer(ic, &from, nil, amount, details)
	if err != nil {
		return err
	}

	supply, err := token.getSupply(ic.Store)
	if err != nil {
		return err
	}

	supply, err = common.Sub(supply, amount)
	if err != nil {
		return fmt.Errorf("negative supply after burn: %w", err)
	}

	token.putSupply(ic.Store, supply)
	ic.Log.Debug("assets were burned", zap.Stringer("from", from), zap.Uint64("amount", amount))

	return nil
}

// TransferNative implements common.Transferer. Witness checks are the
// caller's responsibility.
func (t Token) TransferNative(ic *common.Context, from, to util.Uint160, amount uint64, details []byte) error {
	return t.transfer(ic, &from, &to, amount, details)
}

// getSupply gets the token totalSupply value from the storage.
func (t Token) getSupply(st *storage.MemCachedStore) (uint64, error) {
	var acc Account

	err := common.GetSerialized(st, []byte(t.CirculationKey), &acc)
	if err != nil {
		if errors.Is(err, common.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return acc.Balance, nil
}

func (t Token) putSupply(st *storage.MemCachedStore, supply uint64) {
	// Account encoding of a single uint64 never fails.
	_ = common.SetSerialized(st, []byte(t.CirculationKey), &Account{Balance: supply})
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(st *storage.MemCachedStore, holder util.Uint160) (uint64, error) {
	acc, err := getAccount(st, holder)
	if err != nil {
		return 0, err
	}

	return acc.Balance, nil
}

// transfer moves amount between accounts, nil account stands for the outside
// of the ledger.
func (t Token) transfer(ic *common.Context, from, to *util.Uint160, amount uint64, details []byte) error {
	amountFrom, err := t.canTransfer(ic.Store, from, amount)
	if err != nil {
		return err
	}

	if amount == 0 || from != nil && to != nil && from.Equals(*to) {
		notifyTransfer(ic, from, to, amount, details)
		return nil
	}

	if from != nil {
		var fromKey = common.Key(AccountPrefix, *from)

		if amountFrom.Balance == amount {
			ic.Store.Delete(fromKey)
		} else {
			amountFrom.Balance -= amount
			if err := common.SetSerialized(ic.Store, fromKey, &amountFrom); err != nil {
				return err
			}
		}
	}

	if to != nil {
		var toKey = common.Key(AccountPrefix, *to)

		amountTo, err := getAccount(ic.Store, *to)
		if err != nil {
			return err
		}

		amountTo.Balance, err = common.Add(amountTo.Balance, amount)
		if err != nil {
			return err
		}

		if err := common.SetSerialized(ic.Store, toKey, &amountTo); err != nil {
			return err
		}
	}

	notifyTransfer(ic, from, to, amount, details)

	return nil
}

// canTransfer returns the sender account if it can cover the amount.
func (t Token) canTransfer(st *storage.MemCachedStore, from *util.Uint160, amount uint64) (Account, error) {
	if from == nil {
		return Account{}, nil
	}

	amountFrom, err := getAccount(st, *from)
	if err != nil {
		return Account{}, err
	}

	if amountFrom.Balance < amount {
		return Account{}, fmt.Errorf("%w: %s has %d, needs %d", common.ErrInsufficientFunds, from.StringLE(), amountFrom.Balance, amount)
	}

	// return amountFrom value back to transfer, reduces extra Get
	return amountFrom, nil
}

func notifyTransfer(ic *common.Context, from, to *util.Uint160, amount uint64, details []byte) {
	var (
		fromItem = hashItem(from)
		toItem   = hashItem(to)
		amtItem  = common.IntItem(amount)
	)

	ic.Notify(Hash, "Transfer", fromItem, toItem, amtItem)
	ic.Notify(Hash, "TransferX", fromItem, toItem, amtItem, stackitem.NewByteArray(details))
}

func hashItem(h *util.Uint160) stackitem.Item {
	if h == nil {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(h.BytesBE())
}

func getAccount(st *storage.MemCachedStore, key util.Uint160) (Account, error) {
	var acc Account

	err := common.GetSerialized(st, common.Key(AccountPrefix, key), &acc)
	if err != nil && !errors.Is(err, common.ErrAccountNotFound) {
		return Account{}, err
	}

	return acc, nil
}
