package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"github.com/vulnera/custody/common"
	"github.com/vulnera/custody/config"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "custody"
	app.Usage = "Company vaults and bounty escrows over the native value ledger"
	app.Version = fmt.Sprintf("%d.%d.%d",
		common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: config.DefaultPath,
			Usage: "Path to the YAML configuration file",
		},
	}
	app.Commands = []cli.Command{
		vaultCommand(),
		escrowCommand(),
		balanceCommand(),
		auditCommand(),
		dumpCommand(),
		restoreCommand(),
	}
	return app
}
