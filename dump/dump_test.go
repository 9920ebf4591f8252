package dump

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/common"
	"github.com/vulnera/custody/escrow"
	"github.com/vulnera/custody/vault"
	"go.uber.org/zap/zaptest"
)

var owner = util.Uint160{1, 2, 3}

// fillStore creates a vault with 300 and an escrow with MinEscrowAmount of
// the owner.
func fillStore(t *testing.T) storage.Store {
	st := storage.NewMemoryStore()
	cache := storage.NewMemCachedStore(st)
	ic := common.NewContext(cache, balance.Native(), zaptest.NewLogger(t), 1_700_000_000, owner)

	require.NoError(t, balance.Mint(ic, owner, escrow.MinEscrowAmount+1_000, nil))
	require.NoError(t, vault.Initialize(ic, owner))
	require.NoError(t, vault.Deposit(ic, owner, 300))
	require.NoError(t, escrow.Initialize(ic, owner, escrow.MinEscrowAmount))
	cache.Put([]byte{'m'}, []byte{1, 0, 0, 0})

	_, err := cache.Persist()
	require.NoError(t, err)

	return st
}

func items(st storage.Store) map[string]string {
	res := make(map[string]string)
	st.Seek(storage.SeekRange{}, func(k, v []byte) bool {
		res[string(k)] = string(v)
		return true
	})
	return res
}

func TestID(t *testing.T) {
	id := ID{Label: "staging", Time: 1_700_000_000}
	require.Equal(t, "staging-1700000000", id.String())

	var res ID
	require.NoError(t, res.decodeString(id.String()+"-storage.csv"))
	require.Equal(t, id, res)

	require.Error(t, res.decodeString("staging"))
	require.Error(t, res.decodeString("staging-now-storage.csv"))
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := fillStore(t)
	id := ID{Label: "test", Time: 100}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)

	require.NoError(t, Ledger(src, c))
	require.NoError(t, c.Flush())
	c.Close()

	_, err = NewCreator(dir, id)
	require.ErrorIs(t, err, os.ErrExist)

	data, err := os.ReadFile(filepath.Join(dir, "test-100-records.json"))
	require.NoError(t, err)

	var recs Records
	require.NoError(t, json.Unmarshal(data, &recs))
	require.EqualValues(t, escrow.MinEscrowAmount+1_000, recs.TotalSupply)
	require.Equal(t, []VaultRecord{{
		Address:          address.Uint160ToString(vault.Address(owner)),
		Owner:            address.Uint160ToString(owner),
		Balance:          300,
		DepositTimestamp: 1_700_000_000,
	}}, recs.Vaults)
	require.Equal(t, []EscrowRecord{{
		Address:      address.Uint160ToString(escrow.Address(owner)),
		Owner:        address.Uint160ToString(owner),
		EscrowAmount: escrow.MinEscrowAmount,
	}}, recs.Escrows)
	require.Len(t, recs.Accounts, 3)

	var n int
	err = IterateDumps(dir, func(got ID, r *Reader) {
		n++
		require.Equal(t, id, got)

		sections := make(map[string]int)
		r.IterateStorage(func(section string, _, _ []byte) {
			sections[section]++
		})
		require.Equal(t, map[string]int{
			SectionBalance: 4,
			SectionVault:   1,
			SectionEscrow:  1,
			SectionMeta:    1,
		}, sections)

		dst := storage.NewMemoryStore()
		require.NoError(t, r.Restore(dst))
		require.Equal(t, items(src), items(dst))

		require.ErrorIs(t, r.Restore(dst), ErrStoreNotEmpty)
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestIterateDumpsMissingDir(t *testing.T) {
	err := IterateDumps(filepath.Join(t.TempDir(), "none"), func(ID, *Reader) {
		t.Fatal("no dumps expected")
	})
	require.NoError(t, err)
}

func TestReconcile(t *testing.T) {
	st := fillStore(t)

	recs, err := Collect(st)
	require.NoError(t, err)
	require.Empty(t, recs.Reconcile())

	vaultAddr := vault.Address(owner)

	// move vault funds behind the record and mint out of the supply
	cache := storage.NewMemCachedStore(st)
	ic := common.NewContext(cache, balance.Native(), nil, 0)
	require.NoError(t, balance.Native().TransferNative(ic, vaultAddr, owner, 100, nil))
	cache.Put(common.Key(balance.AccountPrefix, util.Uint160{0xff}), []byte{5, 0, 0, 0, 0, 0, 0, 0})
	_, err = cache.Persist()
	require.NoError(t, err)

	recs, err = Collect(st)
	require.NoError(t, err)

	res := recs.Reconcile()
	require.Equal(t, []Mismatch{
		{Kind: MismatchSupply, Recorded: escrow.MinEscrowAmount + 1_000, Held: escrow.MinEscrowAmount + 1_005},
		{Kind: MismatchVault, Address: address.Uint160ToString(vaultAddr), Recorded: 300, Held: 200},
	}, res)
	require.False(t, res[0].Shortfall())
	require.True(t, res[1].Shortfall())
}

func TestReconcileSupplyOverflow(t *testing.T) {
	// wrapped sum of balances equals the supply
	recs := Records{
		TotalSupply: 10,
		Accounts: []AccountRecord{
			{Address: "a", Balance: math.MaxUint64},
			{Address: "b", Balance: 11},
		},
	}

	res := recs.Reconcile()
	require.Equal(t, []Mismatch{{
		Kind:     MismatchSupply,
		Recorded: 10,
		Held:     math.MaxUint64,
		Overflow: true,
	}}, res)
	require.False(t, res[0].Shortfall())
}
