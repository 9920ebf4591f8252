package main

import (
	"context"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/urfave/cli"
	"github.com/vulnera/custody/balance"
)

func balanceCommand() cli.Command {
	toFlag := cli.StringFlag{Name: "to", Usage: "Receiver address"}
	detailsFlag := cli.StringFlag{Name: "details", Usage: "Free-form details attached to the movement"}

	return cli.Command{
		Name:  "balance",
		Usage: "Native value ledger operations",
		Subcommands: []cli.Command{
			{
				Name:      "mint",
				Usage:     "Bring native value into the ledger",
				ArgsUsage: "<amount>",
				Flags:     []cli.Flag{toFlag, detailsFlag},
				Action:    withEnv(balanceMint),
			},
			{
				Name:      "burn",
				Usage:     "Take native value of the signer out of the ledger",
				ArgsUsage: "<amount>",
				Flags:     append([]cli.Flag{detailsFlag}, signerFlags...),
				Action:    withEnv(balanceBurn),
			},
			{
				Name:      "transfer",
				Usage:     "Transfer native value of the signer",
				ArgsUsage: "<amount>",
				Flags:     append([]cli.Flag{toFlag}, signerFlags...),
				Action:    withEnv(balanceTransfer),
			},
			{
				Name:      "show",
				Usage:     "Print native balance of the address",
				ArgsUsage: "<address>",
				Action:    withEnv(balanceShow),
			},
			{
				Name:   "supply",
				Usage:  "Print total amount of native value in the ledger",
				Action: withEnv(balanceSupply),
			},
		},
	}
}

func balanceMint(c *cli.Context, e *env) error {
	to, err := parseAddress("receiver", c.String("to"))
	if err != nil {
		return err
	}

	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners().Mint(context.Background(), to, amount, []byte(c.String("details")))
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func balanceBurn(c *cli.Context, e *env) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	from, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(from).Burn(context.Background(), from, amount, []byte(c.String("details")))
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func balanceTransfer(c *cli.Context, e *env) error {
	to, err := parseAddress("receiver", c.String("to"))
	if err != nil {
		return err
	}

	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	from, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(from).Transfer(context.Background(), from, to, amount)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func balanceShow(c *cli.Context, e *env) error {
	h, err := parseAddress("account", c.Args().First())
	if err != nil {
		return err
	}

	b, err := e.ledger.BalanceOf(h)
	if err != nil {
		return err
	}

	return printJSON(c, struct {
		Address string `json:"address"`
		Balance string `json:"balance"`
		Symbol  string `json:"symbol"`
	}{
		Address: address.Uint160ToString(h),
		Balance: formatAmount(b),
		Symbol:  balance.Symbol(),
	})
}

func balanceSupply(c *cli.Context, e *env) error {
	s, err := e.ledger.TotalSupply()
	if err != nil {
		return err
	}

	return printJSON(c, struct {
		TotalSupply string `json:"totalSupply"`
		Symbol      string `json:"symbol"`
	}{
		TotalSupply: formatAmount(s),
		Symbol:      balance.Symbol(),
	})
}
