package main

import (
	"context"
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/urfave/cli"
	"github.com/vulnera/custody/vault"
)

func vaultCommand() cli.Command {
	return cli.Command{
		Name:  "vault",
		Usage: "Company vault operations",
		Subcommands: []cli.Command{
			{
				Name:   "init",
				Usage:  "Create an empty vault of the signer",
				Flags:  signerFlags,
				Action: withEnv(vaultInit),
			},
			{
				Name:      "deposit",
				Usage:     "Move funds from the signer wallet into the vault, this locks the whole vault balance",
				ArgsUsage: "<amount>",
				Flags:     signerFlags,
				Action:    withEnv(vaultDeposit),
			},
			{
				Name:      "withdraw",
				Usage:     "Move funds from the unlocked vault to the recipient",
				ArgsUsage: "<amount>",
				Flags: append([]cli.Flag{
					cli.StringFlag{
						Name:  "to",
						Usage: "Recipient address, defaults to the signer",
					},
				}, signerFlags...),
				Action: withEnv(vaultWithdraw),
			},
			{
				Name:  "show",
				Usage: "Print the vault of the owner",
				Flags: []cli.Flag{
					cli.StringFlag{Name: "owner", Usage: "Vault owner address"},
				},
				Action: withEnv(vaultShow),
			},
		},
	}
}

func vaultInit(c *cli.Context, e *env) error {
	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).InitializeVault(context.Background(), owner)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func vaultDeposit(c *cli.Context, e *env) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).DepositVault(context.Background(), owner, amount)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func vaultWithdraw(c *cli.Context, e *env) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	recipient := owner
	if c.IsSet("to") {
		recipient, err = parseAddress("recipient", c.String("to"))
		if err != nil {
			return err
		}
	}

	r, err := e.ledger.WithSigners(owner).WithdrawVault(context.Background(), owner, amount, recipient)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func vaultShow(c *cli.Context, e *env) error {
	owner, err := parseAddress("owner", c.String("owner"))
	if err != nil {
		return err
	}

	v, err := e.ledger.Vault(owner)
	if err != nil {
		return err
	}

	unlock, err := v.UnlockTime()
	if err != nil {
		return errors.New("vault unlock time is out of range")
	}

	return printJSON(c, struct {
		Address          string `json:"address"`
		Owner            string `json:"owner"`
		Balance          string `json:"balance"`
		DepositTimestamp int64  `json:"depositTimestamp"`
		UnlockTime       int64  `json:"unlockTime"`
	}{
		Address:          address.Uint160ToString(vault.Address(owner)),
		Owner:            address.Uint160ToString(v.Owner),
		Balance:          formatAmount(v.Balance),
		DepositTimestamp: v.DepositTimestamp,
		UnlockTime:       unlock,
	})
}
