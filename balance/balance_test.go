package balance

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/vulnera/custody/common"
	"go.uber.org/zap/zaptest"
)

func newContext(t *testing.T, st *storage.MemCachedStore, signers ...util.Uint160) *common.Context {
	return common.NewContext(st, Native(), zaptest.NewLogger(t), 1_700_000_000, signers...)
}

func newStore() *storage.MemCachedStore {
	return storage.NewMemCachedStore(storage.NewMemoryStore())
}

func execution(ic *common.Context) *state.Execution {
	return &state.Execution{Events: ic.Notifications()}
}

func requireBalance(t *testing.T, st *storage.MemCachedStore, h util.Uint160, exp uint64) {
	b, err := BalanceOf(st, h)
	require.NoError(t, err)
	require.Equal(t, exp, b)
}

func requireSupply(t *testing.T, st *storage.MemCachedStore, exp uint64) {
	s, err := TotalSupply(st)
	require.NoError(t, err)
	require.Equal(t, exp, s)
}

func TestToken(t *testing.T) {
	require.Equal(t, "CUSTODY", Symbol())
	require.Equal(t, 8, Decimals())
}

func TestMint(t *testing.T) {
	st := newStore()
	alice := util.Uint160{1}

	ic := newContext(t, st)
	require.NoError(t, Mint(ic, alice, 500, []byte("genesis")))
	require.NoError(t, Mint(ic, alice, 250, nil))

	requireBalance(t, st, alice, 750)
	requireSupply(t, st, 750)

	evs, err := TransferXEventsFromExecution(execution(ic))
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, util.Uint160{}, evs[0].From)
	require.Equal(t, alice, evs[0].To)
	require.EqualValues(t, 500, evs[0].Amount)
	require.Equal(t, common.MintTransferDetails([]byte("genesis")), evs[0].Details)

	t.Run("supply overflow", func(t *testing.T) {
		ic := newContext(t, st)
		err := Mint(ic, alice, ^uint64(0), nil)
		require.ErrorIs(t, err, common.ErrOverflow)
		require.Empty(t, ic.Notifications())
	})
}

func TestTransfer(t *testing.T) {
	st := newStore()
	alice, bob := util.Uint160{1}, util.Uint160{2}

	require.NoError(t, Mint(newContext(t, st), alice, 100, nil))

	t.Run("no witness", func(t *testing.T) {
		err := Transfer(newContext(t, st, bob), alice, bob, 10)
		require.ErrorIs(t, err, common.ErrWitnessFailed)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		err := Transfer(newContext(t, st, alice), alice, bob, 101)
		require.ErrorIs(t, err, common.ErrInsufficientFunds)
		requireBalance(t, st, alice, 100)
	})

	ic := newContext(t, st, alice)
	require.NoError(t, Transfer(ic, alice, bob, 40))
	requireBalance(t, st, alice, 60)
	requireBalance(t, st, bob, 40)
	requireSupply(t, st, 100)

	evs, err := TransferEventsFromExecution(execution(ic))
	require.NoError(t, err)
	require.Equal(t, []*TransferEvent{{From: alice, To: bob, Amount: 40}}, evs)

	t.Run("whole balance", func(t *testing.T) {
		require.NoError(t, Transfer(newContext(t, st, alice), alice, bob, 60))
		requireBalance(t, st, alice, 0)
		requireBalance(t, st, bob, 100)

		_, err := st.Get(common.Key(AccountPrefix, alice))
		require.ErrorIs(t, err, storage.ErrKeyNotFound, "empty account must be removed")
	})

	t.Run("self", func(t *testing.T) {
		ic := newContext(t, st, bob)
		require.NoError(t, Transfer(ic, bob, bob, 100))
		requireBalance(t, st, bob, 100)
		require.Len(t, ic.Notifications(), 2)
	})

	t.Run("zero", func(t *testing.T) {
		carol := util.Uint160{3}
		ic := newContext(t, st, carol)
		require.NoError(t, Transfer(ic, carol, alice, 0))
		require.Len(t, ic.Notifications(), 2)

		_, err := st.Get(common.Key(AccountPrefix, alice))
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
	})
}

func TestBurn(t *testing.T) {
	st := newStore()
	alice := util.Uint160{1}

	require.NoError(t, Mint(newContext(t, st), alice, 100, nil))

	require.ErrorIs(t, Burn(newContext(t, st), alice, 10, nil), common.ErrWitnessFailed)
	require.ErrorIs(t, Burn(newContext(t, st, alice), alice, 101, nil), common.ErrInsufficientFunds)

	ic := newContext(t, st, alice)
	require.NoError(t, Burn(ic, alice, 30, []byte("payout")))
	requireBalance(t, st, alice, 70)
	requireSupply(t, st, 70)

	evs, err := TransferXEventsFromExecution(execution(ic))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, alice, evs[0].From)
	require.Equal(t, util.Uint160{}, evs[0].To)
	require.Equal(t, common.BurnTransferDetails([]byte("payout")), evs[0].Details)
}

func TestTransferNative(t *testing.T) {
	st := newStore()
	alice, vault := util.Uint160{1}, util.Uint160{0xaa}

	require.NoError(t, Mint(newContext(t, st), alice, 100, nil))

	// witness checks are left to the caller
	ic := newContext(t, st)
	require.NoError(t, Native().TransferNative(ic, alice, vault, 100, common.VaultTransferDetails(vault)))
	requireBalance(t, st, alice, 0)
	requireBalance(t, st, vault, 100)

	err := Native().TransferNative(ic, alice, vault, 1, nil)
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
}

func TestEventsFilter(t *testing.T) {
	st := newStore()
	ic := newContext(t, st)
	require.NoError(t, Mint(ic, util.Uint160{1}, 1, nil))

	ic.Notify(common.NameHash("other"), "Transfer")

	evs, err := TransferEventsFromExecution(execution(ic))
	require.NoError(t, err)
	require.Len(t, evs, 1)

	_, err = TransferEventsFromExecution(nil)
	require.Error(t, err)
}
