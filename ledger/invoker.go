package ledger

import (
	"context"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/common"
	"github.com/vulnera/custody/escrow"
	"github.com/vulnera/custody/vault"
)

// Method names of the ledger operations.
const (
	MethodVaultInitialize      = "vault.initialize"
	MethodVaultDeposit         = "vault.deposit"
	MethodVaultWithdraw        = "vault.withdraw"
	MethodEscrowInitialize     = "escrow.initialize"
	MethodEscrowDeposit        = "escrow.deposit"
	MethodEscrowProcessPayment = "escrow.process_payment"
	MethodEscrowCloseBounty    = "escrow.close_bounty"
	MethodBalanceMint          = "balance.mint"
	MethodBalanceBurn          = "balance.burn"
	MethodBalanceTransfer      = "balance.transfer"
)

// Invoker invokes ledger operations on behalf of the fixed set of signers.
// Signers are identities whose signatures the host has already verified.
type Invoker struct {
	l       *Ledger
	signers []util.Uint160
}

// WithSigners returns Invoker with the given signers.
func (l *Ledger) WithSigners(signers ...util.Uint160) *Invoker {
	return &Invoker{
		l:       l,
		signers: signers,
	}
}

func (i *Invoker) invoke(ctx context.Context, method string, fn func(ic *common.Context) error) (*Receipt, error) {
	return i.l.Invoke(ctx, method, i.signers, fn)
}

// InitializeVault creates an empty vault of the owner.
func (i *Invoker) InitializeVault(ctx context.Context, owner util.Uint160) (*Receipt, error) {
	return i.invoke(ctx, MethodVaultInitialize, func(ic *common.Context) error {
		return vault.Initialize(ic, owner)
	})
}

// DepositVault moves amount from the owner's wallet into the owner's vault.
func (i *Invoker) DepositVault(ctx context.Context, owner util.Uint160, amount uint64) (*Receipt, error) {
	return i.invoke(ctx, MethodVaultDeposit, func(ic *common.Context) error {
		return vault.Deposit(ic, owner, amount)
	})
}

// WithdrawVault moves amount from the owner's vault to the recipient.
func (i *Invoker) WithdrawVault(ctx context.Context, owner util.Uint160, amount uint64, recipient util.Uint160) (*Receipt, error) {
	return i.invoke(ctx, MethodVaultWithdraw, func(ic *common.Context) error {
		return vault.Withdraw(ic, owner, amount, recipient)
	})
}

// InitializeEscrow creates the owner's escrow funded with amount.
func (i *Invoker) InitializeEscrow(ctx context.Context, owner util.Uint160, amount uint64) (*Receipt, error) {
	return i.invoke(ctx, MethodEscrowInitialize, func(ic *common.Context) error {
		return escrow.Initialize(ic, owner, amount)
	})
}

// DepositEscrow adds amount to the owner's escrow.
func (i *Invoker) DepositEscrow(ctx context.Context, owner util.Uint160, amount uint64) (*Receipt, error) {
	return i.invoke(ctx, MethodEscrowDeposit, func(ic *common.Context) error {
		return escrow.Deposit(ic, owner, amount)
	})
}

// ProcessPayment pays the hunter from the owner's escrow, see
// escrow.ProcessPayment.
func (i *Invoker) ProcessPayment(ctx context.Context, owner, hunter, platform util.Uint160, p escrow.PaymentParams) (*Receipt, error) {
	return i.invoke(ctx, MethodEscrowProcessPayment, func(ic *common.Context) error {
		return escrow.ProcessPayment(ic, owner, hunter, platform, p)
	})
}

// CloseBounty closes the owner's escrow returning the remainder.
func (i *Invoker) CloseBounty(ctx context.Context, owner util.Uint160, bountyID string) (*Receipt, error) {
	return i.invoke(ctx, MethodEscrowCloseBounty, func(ic *common.Context) error {
		return escrow.CloseBounty(ic, owner, bountyID)
	})
}

// Mint brings amount of native value into the ledger crediting it to the
// identity. It is a host operation and requires no signers.
func (i *Invoker) Mint(ctx context.Context, to util.Uint160, amount uint64, details []byte) (*Receipt, error) {
	return i.invoke(ctx, MethodBalanceMint, func(ic *common.Context) error {
		return balance.Mint(ic, to, amount, details)
	})
}

// Burn takes amount of native value out of the ledger.
func (i *Invoker) Burn(ctx context.Context, from util.Uint160, amount uint64, details []byte) (*Receipt, error) {
	return i.invoke(ctx, MethodBalanceBurn, func(ic *common.Context) error {
		return balance.Burn(ic, from, amount, details)
	})
}

// Transfer moves native value between wallets.
func (i *Invoker) Transfer(ctx context.Context, from, to util.Uint160, amount uint64) (*Receipt, error) {
	return i.invoke(ctx, MethodBalanceTransfer, func(ic *common.Context) error {
		return balance.Transfer(ic, from, to, amount)
	})
}

// Vault returns the owner's vault record.
func (l *Ledger) Vault(owner util.Uint160) (vault.Vault, error) {
	var v vault.Vault
	err := l.view(func(st *storage.MemCachedStore) error {
		var err error
		v, err = vault.Get(st, owner)
		return err
	})
	return v, err
}

// Escrow returns the owner's escrow record.
func (l *Ledger) Escrow(owner util.Uint160) (escrow.Escrow, error) {
	var e escrow.Escrow
	err := l.view(func(st *storage.MemCachedStore) error {
		var err error
		e, err = escrow.Get(st, owner)
		return err
	})
	return e, err
}

// BalanceOf returns native balance of the identity.
func (l *Ledger) BalanceOf(h util.Uint160) (uint64, error) {
	var b uint64
	err := l.view(func(st *storage.MemCachedStore) error {
		var err error
		b, err = balance.BalanceOf(st, h)
		return err
	})
	return b, err
}

// TotalSupply returns the amount of native value in the ledger.
func (l *Ledger) TotalSupply() (uint64, error) {
	var s uint64
	err := l.view(func(st *storage.MemCachedStore) error {
		var err error
		s, err = balance.TotalSupply(st)
		return err
	})
	return s, err
}
