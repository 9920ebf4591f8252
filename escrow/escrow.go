package escrow

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
	// Escrow is a bounty escrow record.
	Escrow struct {
		// Owner funds the escrow and authorizes payouts.
		Owner util.Uint160
		// EscrowAmount is the amount left for payouts.
		EscrowAmount uint64
	}

	// PaymentParams groups arguments of ProcessPayment.
	//
	// MaxSubmissions and CurrentPaidSubmissions are trusted as is: the escrow
	// keeps no record of paid submissions. The caller must serialize payments
	// of a bounty and supply counters that reflect all previous payments,
	// otherwise the same submission can be paid twice.
	PaymentParams struct {
		BountyID     string
		SubmissionID string
		// CustomAmount overrides RewardPerSubmission when set.
		CustomAmount           *uint64
		RewardPerSubmission    uint64
		MaxSubmissions         uint32
		CurrentPaidSubmissions uint32
	}
)

const (
	// Tag is the domain tag of escrow addresses.
	Tag = "bounty-escrow"

	// FeeBPS is the platform fee in basis points (2%).
	FeeBPS = 200

	// MinEscrowAmount is the least amount an escrow can be created with.
	MinEscrowAmount = 100_000_000

	// StoragePrefix is the storage prefix of escrow records.
	StoragePrefix = 'e'
)

var (
	// ErrInvalidEscrowAmount is returned when an escrow is created with less
	// than MinEscrowAmount.
	ErrInvalidEscrowAmount = errors.New("invalid escrow amount")
	// ErrMaxSubmissionsReached is returned when all submissions of a bounty
	// are paid.
	ErrMaxSubmissionsReached = errors.New("maximum submissions reached")
)

// Hash is the identity escrow notifications are emitted on behalf of.
var Hash = common.NameHash("escrow")

// Address returns derived address of the owner's escrow. The address is also
// the native wallet holding escrow funds.
func Address(owner util.Uint160) util.Uint160 {
	return common.DeriveAddress(Tag, owner)
}

// EncodeBinary implements io.Serializable.
func (e *Escrow) EncodeBinary(w *io.BinWriter) {
	e.Owner.EncodeBinary(w)
	w.WriteU64LE(e.EscrowAmount)
}

// DecodeBinary implements io.Serializable.
func (e *Escrow) DecodeBinary(r *io.BinReader) {
	e.Owner.DecodeBinary(r)
	e.EscrowAmount = r.ReadU64LE()
}

// Amount returns the amount to be paid for the submission.
func (p PaymentParams) Amount() uint64 {
	if p.CustomAmount != nil {
		return *p.CustomAmount
	}
	return p.RewardPerSubmission
}

// IsValidEscrowAmount checks whether an escrow can be created with amount.
func IsValidEscrowAmount(amount uint64) bool {
	return amount >= MinEscrowAmount
}

// SplitFee splits payment amount into the hunter part and the platform fee.
// Parts always sum up to amount.
func SplitFee(amount uint64) (hunter uint64, fee uint64, err error) {
	fee, err = common.BasisPoints(amount, FeeBPS)
	if err != nil {
		return 0, 0, fmt.Errorf("platform fee: %w", err)
	}

	hunter, err = common.Sub(amount, fee)
	if err != nil {
		return 0, 0, fmt.Errorf("hunter amount: %w", err)
	}

	return hunter, fee, nil
}

// Initialize creates owner's escrow funded with escrowAmount from the owner's
// wallet. It must be witnessed by the owner.
func Initialize(ic *common.Context, owner util.Uint160, escrowAmount uint64) error {
	if err := common.CheckWitness(ic, owner); err != nil {
		return err
	}

	if !IsValidEscrowAmount(escrowAmount) {
		return fmt.Errorf("%w: %d is less than %d", ErrInvalidEscrowAmount, escrowAmount, MinEscrowAmount)
	}

	addr := Address(owner)
	key := common.Key(StoragePrefix, addr)

	ok, err := common.Exists(ic.Store, key)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("escrow of %s: %w", owner.StringLE(), common.ErrAlreadyInitialized)
	}

	err = ic.Native.TransferNative(ic, owner, addr, escrowAmount, common.EscrowTransferDetails(""))
	if err != nil {
		return fmt.Errorf("transfer to escrow: %w", err)
	}

	err = common.SetSerialized(ic.Store, key, &Escrow{
		Owner:        owner,
		EscrowAmount: escrowAmount,
	})
	if err != nil {
		return err
	}

	ic.Log.Debug("escrow initialized",
		zap.Stringer("owner", owner),
		zap.Uint64("amount", escrowAmount))

	return nil
}

// Deposit adds amount from the owner's wallet to the escrow.
func Deposit(ic *common.Context, owner util.Uint160, amount uint64) error {
	addr := Address(owner)

	e, err := getOwned(ic, owner, addr)
	if err != nil {
		return err
	}

	e.EscrowAmount, err = common.Add(e.EscrowAmount, amount)
	if err != nil {
		return err
	}

	err = ic.Native.TransferNative(ic, owner, addr, amount, common.EscrowTransferDetails(""))
	if err != nil {
		return fmt.Errorf("transfer to escrow: %w", err)
	}

	return common.SetSerialized(ic.Store, common.Key(StoragePrefix, addr), &e)
}

// ProcessPayment pays for the submission: the hunter receives the amount
// without the platform fee, the platform wallet receives the fee. Both
// transfers happen or none does.
//
// It produces PaymentProcessed notification.
func ProcessPayment(ic *common.Context, owner, hunterWallet, platformWallet util.Uint160, p PaymentParams) error {
	addr := Address(owner)

	e, err := getOwned(ic, owner, addr)
	if err != nil {
		return err
	}

	if p.CurrentPaidSubmissions >= p.MaxSubmissions {
		return fmt.Errorf("%w: %d of %d paid", ErrMaxSubmissionsReached, p.CurrentPaidSubmissions, p.MaxSubmissions)
	}

	amount := p.Amount()
	if amount > e.EscrowAmount {
		return fmt.Errorf("%w: escrow has %d, requested %d", common.ErrInsufficientFunds, e.EscrowAmount, amount)
	}

	hunterAmount, platformFee, err := SplitFee(amount)
	if err != nil {
		return err
	}

	err = ic.Native.TransferNative(ic, addr, hunterWallet, hunterAmount, common.EscrowTransferDetails(p.BountyID))
	if err != nil {
		return fmt.Errorf("transfer to hunter: %w", err)
	}

	err = ic.Native.TransferNative(ic, addr, platformWallet, platformFee, common.PlatformFeeTransferDetails(p.BountyID))
	if err != nil {
		return fmt.Errorf("transfer platform fee: %w", err)
	}

	e.EscrowAmount, err = common.Sub(e.EscrowAmount, amount)
	if err != nil {
		return err
	}

	err = common.SetSerialized(ic.Store, common.Key(StoragePrefix, addr), &e)
	if err != nil {
		return err
	}

	ic.Notify(Hash, "PaymentProcessed",
		stackitem.NewByteArray([]byte(p.BountyID)),
		stackitem.NewByteArray([]byte(p.SubmissionID)),
		stackitem.NewByteArray(hunterWallet.BytesBE()),
		common.IntItem(hunterAmount),
		common.IntItem(platformFee),
	)

	return nil
}

// CloseBounty returns everything left in the escrow to the owner and removes
// the escrow. Any later operation on it fails with common.ErrAccountNotFound.
//
// It produces BountyClosed notification.
func CloseBounty(ic *common.Context, owner util.Uint160, bountyID string) error {
	addr := Address(owner)

	e, err := getOwned(ic, owner, addr)
	if err != nil {
		return err
	}

	remaining := e.EscrowAmount

	err = ic.Native.TransferNative(ic, addr, owner, remaining, common.EscrowTransferDetails(bountyID))
	if err != nil {
		return fmt.Errorf("return escrow remainder: %w", err)
	}

	ic.Store.Delete(common.Key(StoragePrefix, addr))

	ic.Notify(Hash, "BountyClosed",
		stackitem.NewByteArray([]byte(bountyID)),
		common.IntItem(remaining),
	)

	ic.Log.Debug("escrow closed",
		zap.Stringer("owner", owner),
		zap.String("bounty", bountyID),
		zap.Uint64("remaining", remaining))

	return nil
}

// Get returns the escrow of the owner or common.ErrAccountNotFound.
func Get(st *storage.MemCachedStore, owner util.Uint160) (Escrow, error) {
	var e Escrow

	err := common.GetSerialized(st, common.Key(StoragePrefix, Address(owner)), &e)
	if err != nil {
		return Escrow{}, fmt.Errorf("escrow of %s: %w", owner.StringLE(), err)
	}

	return e, nil
}

// getOwned checks owner witness and reads the escrow.
func getOwned(ic *common.Context, owner, addr util.Uint160) (Escrow, error) {
	if !ic.CheckWitness(owner) {
		return Escrow{}, common.ErrOwnerWitnessFailed
	}

	var e Escrow

	err := common.GetSerialized(ic.Store, common.Key(StoragePrefix, addr), &e)
	if err != nil {
		return Escrow{}, fmt.Errorf("escrow of %s: %w", owner.StringLE(), err)
	}

	if err := common.CheckOwnerWitness(ic, e.Owner, owner); err != nil {
		return Escrow{}, err
	}

	return e, nil
}
