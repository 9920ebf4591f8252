package dump

import (
	"cmp"
	"math"
	"slices"

	"github.com/vulnera/custody/common"
)

// Mismatch kinds.
const (
	MismatchSupply = "supply"
	MismatchVault  = "vault"
	MismatchEscrow = "escrow"
)

// Mismatch is a difference between the recorded amount and the native value
// actually held for it.
type Mismatch struct {
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
	// Recorded is the amount accounted in the vault or escrow record, or the
	// total supply.
	Recorded uint64 `json:"recorded"`
	// Held is the balance of the derived wallet, or the sum of all balances.
	Held uint64 `json:"held"`
	// Overflow is set when the sum of all balances does not fit into 64 bits,
	// Held is meaningless then.
	Overflow bool `json:"overflow,omitempty"`
}

// Shortfall tells whether less value is held than recorded. Escrow wallets
// may hold more than recorded since direct transfers to them are not
// accounted, vaults and supply must match exactly.
func (m Mismatch) Shortfall() bool {
	return m.Held < m.Recorded
}

// Reconcile checks that vault and escrow records are backed by their wallets
// and the total supply equals the sum of all balances.
func (x Records) Reconcile() []Mismatch {
	var (
		res   []Mismatch
		sum   uint64
		held  = make(map[string]uint64, len(x.Accounts))
		owned = func(kind, addr string, recorded uint64) {
			if h := held[addr]; h != recorded {
				res = append(res, Mismatch{Kind: kind, Address: addr, Recorded: recorded, Held: h})
			}
		}
	)

	var overflow bool
	for _, acc := range x.Accounts {
		held[acc.Address] = acc.Balance
		if overflow {
			continue
		}
		s, err := common.Add(sum, acc.Balance)
		if err != nil {
			overflow, sum = true, math.MaxUint64
			continue
		}
		sum = s
	}

	if overflow || sum != x.TotalSupply {
		res = append(res, Mismatch{Kind: MismatchSupply, Recorded: x.TotalSupply, Held: sum, Overflow: overflow})
	}

	for _, v := range x.Vaults {
		owned(MismatchVault, v.Address, v.Balance)
	}

	for _, e := range x.Escrows {
		owned(MismatchEscrow, e.Address, e.EscrowAmount)
	}

	slices.SortFunc(res, func(a, b Mismatch) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Address, b.Address)
	})

	return res
}
