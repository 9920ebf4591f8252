package dump

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/escrow"
	"github.com/vulnera/custody/vault"
)

// Storage sections.
const (
	SectionBalance = "balance"
	SectionVault   = "vault"
	SectionEscrow  = "escrow"
	SectionMeta    = "meta"
)

type (
	// Records groups decoded ledger records. Identities are Neo addresses.
	Records struct {
		TotalSupply uint64          `json:"totalSupply"`
		Accounts    []AccountRecord `json:"accounts"`
		Vaults      []VaultRecord   `json:"vaults"`
		Escrows     []EscrowRecord  `json:"escrows"`
	}

	// AccountRecord is a native wallet balance.
	AccountRecord struct {
		Address string `json:"address"`
		Balance uint64 `json:"balance"`
	}

	// VaultRecord is a company vault.
	VaultRecord struct {
		Address          string `json:"address"`
		Owner            string `json:"owner"`
		Balance          uint64 `json:"balance"`
		DepositTimestamp int64  `json:"depositTimestamp"`
	}

	// EscrowRecord is a bounty escrow.
	EscrowRecord struct {
		Address      string `json:"address"`
		Owner        string `json:"owner"`
		EscrowAmount uint64 `json:"escrowAmount"`
	}
)

// Seeker provides read access to the ledger storage. It is implemented by
// ledger.Ledger and neo-go stores.
type Seeker interface {
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

// Ledger writes every storage item of src into the Creator and decodes known
// records. It does not flush the Creator.
func Ledger(src Seeker, c *Creator) error {
	return iterate(src, &c.records, func(section string, k, v []byte) error {
		return c.Section(section).Write(k, v)
	})
}

// Collect decodes known records of src.
func Collect(src Seeker) (Records, error) {
	var res Records
	err := iterate(src, &res, nil)
	return res, err
}

func iterate(src Seeker, recs *Records, f func(section string, k, v []byte) error) error {
	var err error

	src.Seek(storage.SeekRange{}, func(k, v []byte) bool {
		k, v = bytes.Clone(k), bytes.Clone(v)

		section := sectionOf(k)

		if f != nil {
			err = f(section, k, v)
			if err != nil {
				return false
			}
		}

		err = recs.add(section, k, v)
		if err != nil {
			err = fmt.Errorf("decode %s record %x: %w", section, k, err)
			return false
		}

		return true
	})

	return err
}

func sectionOf(key []byte) string {
	switch {
	case string(key) == balance.SupplyKey:
		return SectionBalance
	case len(key) == 1+util.Uint160Size:
		switch key[0] {
		case balance.AccountPrefix:
			return SectionBalance
		case vault.StoragePrefix:
			return SectionVault
		case escrow.StoragePrefix:
			return SectionEscrow
		}
	}
	return SectionMeta
}

func (x *Records) add(section string, key, value []byte) error {
	if section == SectionMeta {
		return nil
	}

	if string(key) == balance.SupplyKey {
		var acc balance.Account
		if err := decode(value, &acc); err != nil {
			return err
		}
		x.TotalSupply = acc.Balance
		return nil
	}

	h, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return err
	}

	switch section {
	case SectionBalance:
		var acc balance.Account
		if err := decode(value, &acc); err != nil {
			return err
		}
		x.Accounts = append(x.Accounts, AccountRecord{
			Address: address.Uint160ToString(h),
			Balance: acc.Balance,
		})
	case SectionVault:
		var v vault.Vault
		if err := decode(value, &v); err != nil {
			return err
		}
		x.Vaults = append(x.Vaults, VaultRecord{
			Address:          address.Uint160ToString(h),
			Owner:            address.Uint160ToString(v.Owner),
			Balance:          v.Balance,
			DepositTimestamp: v.DepositTimestamp,
		})
	case SectionEscrow:
		var e escrow.Escrow
		if err := decode(value, &e); err != nil {
			return err
		}
		x.Escrows = append(x.Escrows, EscrowRecord{
			Address:      address.Uint160ToString(h),
			Owner:        address.Uint160ToString(e.Owner),
			EscrowAmount: e.EscrowAmount,
		})
	default:
		return errors.New("unknown section")
	}

	return nil
}

func decode(data []byte, v io.Serializable) error {
	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	return r.Err
}
