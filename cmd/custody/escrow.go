package main

import (
	"context"
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/urfave/cli"
	"github.com/vulnera/custody/escrow"
)

func escrowCommand() cli.Command {
	return cli.Command{
		Name:  "escrow",
		Usage: "Bounty escrow operations",
		Subcommands: []cli.Command{
			{
				Name:      "init",
				Usage:     "Create and fund the escrow of the signer",
				ArgsUsage: "<amount>",
				Flags:     signerFlags,
				Action:    withEnv(escrowInit),
			},
			{
				Name:      "deposit",
				Usage:     "Top up the escrow of the signer",
				ArgsUsage: "<amount>",
				Flags:     signerFlags,
				Action:    withEnv(escrowDeposit),
			},
			{
				Name:  "pay",
				Usage: "Pay the hunter for the submission charging the platform fee",
				Flags: append([]cli.Flag{
					cli.StringFlag{Name: "bounty", Usage: "Bounty ID"},
					cli.StringFlag{Name: "submission", Usage: "Submission ID"},
					cli.StringFlag{Name: "hunter", Usage: "Hunter wallet address"},
					cli.StringFlag{Name: "reward", Usage: "Reward per submission"},
					cli.StringFlag{Name: "amount", Usage: "Custom payout amount overriding the reward"},
					cli.Uint64Flag{Name: "max", Usage: "Maximum number of paid submissions"},
					cli.Uint64Flag{Name: "paid", Usage: "Number of submissions paid so far"},
				}, signerFlags...),
				Action: withEnv(escrowPay),
			},
			{
				Name:  "close",
				Usage: "Close the escrow returning the remainder to the signer",
				Flags: append([]cli.Flag{
					cli.StringFlag{Name: "bounty", Usage: "Bounty ID"},
				}, signerFlags...),
				Action: withEnv(escrowClose),
			},
			{
				Name:  "show",
				Usage: "Print the escrow of the owner",
				Flags: []cli.Flag{
					cli.StringFlag{Name: "owner", Usage: "Escrow owner address"},
				},
				Action: withEnv(escrowShow),
			},
			{
				Name:      "fee",
				Usage:     "Print the payout split of the amount",
				ArgsUsage: "<amount>",
				Action:    escrowFee,
			},
		},
	}
}

func escrowInit(c *cli.Context, e *env) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).InitializeEscrow(context.Background(), owner, amount)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func escrowDeposit(c *cli.Context, e *env) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).DepositEscrow(context.Background(), owner, amount)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func escrowPay(c *cli.Context, e *env) error {
	hunter, err := parseAddress("hunter", c.String("hunter"))
	if err != nil {
		return err
	}

	platform, err := e.cfg.Platform.Address()
	if err != nil {
		return err
	}

	p := escrow.PaymentParams{
		BountyID:     c.String("bounty"),
		SubmissionID: c.String("submission"),
	}

	p.MaxSubmissions, err = counter(c, "max")
	if err != nil {
		return err
	}

	p.CurrentPaidSubmissions, err = counter(c, "paid")
	if err != nil {
		return err
	}

	if c.IsSet("reward") {
		p.RewardPerSubmission, err = parseAmount(c.String("reward"))
		if err != nil {
			return err
		}
	}

	if c.IsSet("amount") {
		custom, err := parseAmount(c.String("amount"))
		if err != nil {
			return err
		}
		p.CustomAmount = &custom
	}

	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).ProcessPayment(context.Background(), owner, hunter, platform, p)
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

// counter reads submission counter flag rejecting values not fitting 32 bits.
func counter(c *cli.Context, name string) (uint32, error) {
	v := c.Uint64(name)
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("--%s %d is out of range", name, v)
	}
	return uint32(v), nil
}

func escrowClose(c *cli.Context, e *env) error {
	owner, err := e.signer(c)
	if err != nil {
		return err
	}

	r, err := e.ledger.WithSigners(owner).CloseBounty(context.Background(), owner, c.String("bounty"))
	if err != nil {
		return err
	}
	return printReceipt(c, r)
}

func escrowShow(c *cli.Context, e *env) error {
	owner, err := parseAddress("owner", c.String("owner"))
	if err != nil {
		return err
	}

	es, err := e.ledger.Escrow(owner)
	if err != nil {
		return err
	}

	return printJSON(c, struct {
		Address      string `json:"address"`
		Owner        string `json:"owner"`
		EscrowAmount string `json:"escrowAmount"`
	}{
		Address:      address.Uint160ToString(escrow.Address(owner)),
		Owner:        address.Uint160ToString(es.Owner),
		EscrowAmount: formatAmount(es.EscrowAmount),
	})
}

func escrowFee(c *cli.Context) error {
	amount, err := parseAmount(c.Args().First())
	if err != nil {
		return err
	}

	hunter, fee, err := escrow.SplitFee(amount)
	if err != nil {
		return err
	}

	return printJSON(c, struct {
		Amount      string `json:"amount"`
		HunterPart  string `json:"hunterPart"`
		PlatformFee string `json:"platformFee"`
	}{
		Amount:      formatAmount(amount),
		HunterPart:  formatAmount(hunter),
		PlatformFee: formatAmount(fee),
	})
}
