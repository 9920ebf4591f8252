package escrow

import (
	"errors"
	"math"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/common"
	"go.uber.org/zap/zaptest"
)

const t0 = 1_700_000_000

var (
	owner    = util.Uint160{1}
	hunter   = util.Uint160{2}
	platform = util.Uint160{3}
	stranger = util.Uint160{4}
)

// failingTransferer fails movements to the given identity.
type failingTransferer struct {
	common.Transferer
	to util.Uint160
}

var errTransferRejected = errors.New("transfer rejected")

func (f failingTransferer) TransferNative(ic *common.Context, from, to util.Uint160, amount uint64, details []byte) error {
	if to.Equals(f.to) {
		return errTransferRejected
	}
	return f.Transferer.TransferNative(ic, from, to, amount, details)
}

type env struct {
	t      *testing.T
	st     storage.Store
	native common.Transferer
}

func newEnv(t *testing.T, funds uint64) *env {
	e := &env{t: t, st: storage.NewMemoryStore(), native: balance.Native()}
	_, err := e.invoke(nil, func(ic *common.Context) error {
		return balance.Mint(ic, owner, funds, nil)
	})
	require.NoError(t, err)
	return e
}

// invoke runs fn over an overlay persisted only if fn succeeds.
func (e *env) invoke(signers []util.Uint160, fn func(ic *common.Context) error) (*state.Execution, error) {
	overlay := storage.NewMemCachedStore(e.st)
	ic := common.NewContext(overlay, e.native, zaptest.NewLogger(e.t), t0, signers...)

	if err := fn(ic); err != nil {
		return nil, err
	}

	_, err := overlay.Persist()
	require.NoError(e.t, err)

	return &state.Execution{Events: ic.Notifications()}, nil
}

func (e *env) asOwner(fn func(ic *common.Context) error) (*state.Execution, error) {
	return e.invoke([]util.Uint160{owner}, fn)
}

func (e *env) escrow() Escrow {
	es, err := Get(storage.NewMemCachedStore(e.st), owner)
	require.NoError(e.t, err)
	return es
}

func (e *env) balance(h util.Uint160) uint64 {
	b, err := balance.BalanceOf(storage.NewMemCachedStore(e.st), h)
	require.NoError(e.t, err)
	return b
}

func initialize(amount uint64) func(ic *common.Context) error {
	return func(ic *common.Context) error {
		return Initialize(ic, owner, amount)
	}
}

func pay(p PaymentParams) func(ic *common.Context) error {
	return func(ic *common.Context) error {
		return ProcessPayment(ic, owner, hunter, platform, p)
	}
}

func TestSplitFee(t *testing.T) {
	h, f, err := SplitFee(1_000_000)
	require.NoError(t, err)
	require.EqualValues(t, 980_000, h)
	require.EqualValues(t, 20_000, f)

	for _, amount := range []uint64{0, 1, 49, 50, 99, 12_345_678, math.MaxUint64 / FeeBPS} {
		h, f, err := SplitFee(amount)
		require.NoError(t, err)
		require.Equal(t, amount, h+f, "amount %d", amount)
		require.Equal(t, amount*FeeBPS/common.BasisPointsDenominator, f)
	}

	_, _, err = SplitFee(math.MaxUint64)
	require.ErrorIs(t, err, common.ErrOverflow)
}

func TestIsValidEscrowAmount(t *testing.T) {
	require.False(t, IsValidEscrowAmount(0))
	require.False(t, IsValidEscrowAmount(MinEscrowAmount-1))
	require.True(t, IsValidEscrowAmount(MinEscrowAmount))
}

func TestPaymentParamsAmount(t *testing.T) {
	p := PaymentParams{RewardPerSubmission: 10}
	require.EqualValues(t, 10, p.Amount())

	custom := uint64(3)
	p.CustomAmount = &custom
	require.EqualValues(t, 3, p.Amount())

	custom = 0
	require.Zero(t, p.Amount())
}

func TestInitialize(t *testing.T) {
	e := newEnv(t, 500_000_000)

	_, err := e.invoke([]util.Uint160{stranger}, initialize(MinEscrowAmount))
	require.ErrorIs(t, err, common.ErrWitnessFailed)

	_, err = e.asOwner(initialize(MinEscrowAmount - 1))
	require.ErrorIs(t, err, ErrInvalidEscrowAmount)

	_, err = e.asOwner(initialize(600_000_000))
	require.ErrorIs(t, err, common.ErrInsufficientFunds)

	_, err = e.asOwner(initialize(200_000_000))
	require.NoError(t, err)
	require.Equal(t, Escrow{Owner: owner, EscrowAmount: 200_000_000}, e.escrow())
	require.EqualValues(t, 200_000_000, e.balance(Address(owner)))
	require.EqualValues(t, 300_000_000, e.balance(owner))

	_, err = e.asOwner(initialize(MinEscrowAmount))
	require.ErrorIs(t, err, common.ErrAlreadyInitialized)
	require.EqualValues(t, 200_000_000, e.escrow().EscrowAmount)
}

func TestDeposit(t *testing.T) {
	e := newEnv(t, 500_000_000)

	_, err := e.asOwner(func(ic *common.Context) error {
		return Deposit(ic, owner, 1)
	})
	require.ErrorIs(t, err, common.ErrAccountNotFound)

	_, err = e.asOwner(initialize(MinEscrowAmount))
	require.NoError(t, err)

	_, err = e.invoke([]util.Uint160{stranger}, func(ic *common.Context) error {
		return Deposit(ic, owner, 1)
	})
	require.ErrorIs(t, err, common.ErrOwnerWitnessFailed)

	for _, amount := range []uint64{0, 50_000_000} {
		_, err = e.asOwner(func(ic *common.Context) error {
			return Deposit(ic, owner, amount)
		})
		require.NoError(t, err)
	}
	require.EqualValues(t, 150_000_000, e.escrow().EscrowAmount)
	require.EqualValues(t, 150_000_000, e.balance(Address(owner)))

	_, err = e.asOwner(func(ic *common.Context) error {
		return Deposit(ic, owner, 400_000_000)
	})
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	require.EqualValues(t, 150_000_000, e.escrow().EscrowAmount)
}

func TestProcessPayment(t *testing.T) {
	e := newEnv(t, 200_000_000)

	_, err := e.asOwner(initialize(200_000_000))
	require.NoError(t, err)

	p := PaymentParams{
		BountyID:               "bounty-1",
		SubmissionID:           "sub-1",
		RewardPerSubmission:    50_000_000,
		MaxSubmissions:         3,
		CurrentPaidSubmissions: 0,
	}

	ex, err := e.asOwner(pay(p))
	require.NoError(t, err)

	require.EqualValues(t, 49_000_000, e.balance(hunter))
	require.EqualValues(t, 1_000_000, e.balance(platform))
	require.EqualValues(t, 150_000_000, e.escrow().EscrowAmount)
	require.EqualValues(t, 150_000_000, e.balance(Address(owner)))

	evs, err := PaymentProcessedEventsFromExecution(ex)
	require.NoError(t, err)
	require.Equal(t, []*PaymentProcessedEvent{{
		BountyID:     "bounty-1",
		SubmissionID: "sub-1",
		HunterWallet: hunter,
		Amount:       49_000_000,
		PlatformFee:  1_000_000,
	}}, evs)

	transfers, err := balance.TransferXEventsFromExecution(ex)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	require.Equal(t, common.EscrowTransferDetails("bounty-1"), transfers[0].Details)
	require.Equal(t, common.PlatformFeeTransferDetails("bounty-1"), transfers[1].Details)

	t.Run("max submissions", func(t *testing.T) {
		p := p
		p.CurrentPaidSubmissions = 3
		_, err := e.asOwner(pay(p))
		require.ErrorIs(t, err, ErrMaxSubmissionsReached)

		p.MaxSubmissions, p.CurrentPaidSubmissions = 0, 0
		_, err = e.asOwner(pay(p))
		require.ErrorIs(t, err, ErrMaxSubmissionsReached)
	})

	t.Run("custom amount", func(t *testing.T) {
		p := p
		custom := uint64(1_000_000)
		p.CustomAmount = &custom
		p.CurrentPaidSubmissions = 1

		_, err := e.asOwner(pay(p))
		require.NoError(t, err)
		require.EqualValues(t, 149_000_000, e.escrow().EscrowAmount)
		require.EqualValues(t, 49_980_000, e.balance(hunter))
		require.EqualValues(t, 1_020_000, e.balance(platform))
	})

	t.Run("insufficient", func(t *testing.T) {
		p := p
		p.RewardPerSubmission = 149_000_001
		_, err := e.asOwner(pay(p))
		require.ErrorIs(t, err, common.ErrInsufficientFunds)
	})

	t.Run("owner witness", func(t *testing.T) {
		_, err := e.invoke([]util.Uint160{stranger}, pay(p))
		require.ErrorIs(t, err, common.ErrOwnerWitnessFailed)
	})

	t.Run("zero amount", func(t *testing.T) {
		p := p
		p.RewardPerSubmission = 0
		_, err := e.asOwner(pay(p))
		require.NoError(t, err)
		require.EqualValues(t, 149_000_000, e.escrow().EscrowAmount)
	})
}

func TestProcessPaymentAtomic(t *testing.T) {
	e := newEnv(t, 200_000_000)

	_, err := e.asOwner(initialize(200_000_000))
	require.NoError(t, err)

	e.native = failingTransferer{Transferer: balance.Native(), to: platform}

	_, err = e.asOwner(pay(PaymentParams{
		BountyID:            "bounty-1",
		SubmissionID:        "sub-1",
		RewardPerSubmission: 50_000_000,
		MaxSubmissions:      1,
	}))
	require.ErrorIs(t, err, errTransferRejected)

	require.Zero(t, e.balance(hunter))
	require.Zero(t, e.balance(platform))
	require.EqualValues(t, 200_000_000, e.escrow().EscrowAmount)
	require.EqualValues(t, 200_000_000, e.balance(Address(owner)))
}

func TestCloseBounty(t *testing.T) {
	e := newEnv(t, 200_000_000)

	_, err := e.asOwner(initialize(200_000_000))
	require.NoError(t, err)

	_, err = e.asOwner(pay(PaymentParams{
		BountyID:            "bounty-1",
		RewardPerSubmission: 50_000_000,
		MaxSubmissions:      3,
	}))
	require.NoError(t, err)

	_, err = e.invoke([]util.Uint160{stranger}, func(ic *common.Context) error {
		return CloseBounty(ic, owner, "bounty-1")
	})
	require.ErrorIs(t, err, common.ErrOwnerWitnessFailed)

	ex, err := e.asOwner(func(ic *common.Context) error {
		return CloseBounty(ic, owner, "bounty-1")
	})
	require.NoError(t, err)

	evs, err := BountyClosedEventsFromExecution(ex)
	require.NoError(t, err)
	require.Equal(t, []*BountyClosedEvent{{BountyID: "bounty-1", RemainingAmount: 150_000_000}}, evs)

	require.EqualValues(t, 150_000_000, e.balance(owner))
	require.Zero(t, e.balance(Address(owner)))

	_, err = Get(storage.NewMemCachedStore(e.st), owner)
	require.ErrorIs(t, err, common.ErrAccountNotFound)

	for name, fn := range map[string]func(ic *common.Context) error{
		"deposit": func(ic *common.Context) error { return Deposit(ic, owner, 1) },
		"pay": pay(PaymentParams{
			RewardPerSubmission: 1,
			MaxSubmissions:      3,
		}),
		"close": func(ic *common.Context) error { return CloseBounty(ic, owner, "bounty-1") },
	} {
		_, err := e.asOwner(fn)
		require.ErrorIs(t, err, common.ErrAccountNotFound, name)
	}

	t.Run("reinitialize", func(t *testing.T) {
		_, err := e.asOwner(initialize(MinEscrowAmount))
		require.NoError(t, err)
		require.EqualValues(t, MinEscrowAmount, e.escrow().EscrowAmount)
	})
}

func TestDepositOverflow(t *testing.T) {
	e := newEnv(t, MinEscrowAmount)

	_, err := e.asOwner(initialize(MinEscrowAmount))
	require.NoError(t, err)

	// total supply caps wallet balances, so the record is set directly
	_, err = e.asOwner(func(ic *common.Context) error {
		return common.SetSerialized(ic.Store, common.Key(StoragePrefix, Address(owner)), &Escrow{
			Owner:        owner,
			EscrowAmount: math.MaxUint64,
		})
	})
	require.NoError(t, err)

	_, err = e.invoke(nil, func(ic *common.Context) error {
		return balance.Mint(ic, owner, 1, nil)
	})
	require.NoError(t, err)

	_, err = e.asOwner(func(ic *common.Context) error {
		return Deposit(ic, owner, 1)
	})
	require.ErrorIs(t, err, common.ErrOverflow)
	require.EqualValues(t, uint64(math.MaxUint64), e.escrow().EscrowAmount)
	require.EqualValues(t, 1, e.balance(owner))
	require.EqualValues(t, MinEscrowAmount, e.balance(Address(owner)))
}
