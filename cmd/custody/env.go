package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/config"
	"github.com/vulnera/custody/ledger"
	"go.uber.org/zap"
)

var (
	walletFlag = cli.StringFlag{
		Name:  "wallet, w",
		Usage: "Path to NEP-6 wallet of the signer, overrides configured one",
	}
	addressFlag = cli.StringFlag{
		Name:  "address, a",
		Usage: "Signer account address, defaults to the wallet default account",
	}
	passwordFlag = cli.StringFlag{
		Name:   "password",
		EnvVar: "CUSTODY_WALLET_PASSWORD",
		Usage:  "Password of the signer account",
	}
	signerFlags = []cli.Flag{walletFlag, addressFlag, passwordFlag}
)

// env holds resources shared by commands.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	ledger *ledger.Ledger
}

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.GlobalString("config")

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !c.GlobalIsSet("config") {
		return config.Default(), nil
	}
	return cfg, err
}

func newEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	log, err := cfg.Logger.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	if cfg.Ledger.DBConfiguration.Type == dbconfig.InMemoryDB {
		log.Warn("ledger uses in-memory store, changes are lost on exit")
	}

	l, err := ledger.Open(cfg.Ledger.DBConfiguration, ledger.Options{Logger: log})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &env{
		cfg:    cfg,
		log:    log,
		ledger: l,
	}, nil
}

func (e *env) close() {
	if err := e.ledger.Close(); err != nil {
		e.log.Error("failed to close ledger", zap.Error(err))
	}
	_ = e.log.Sync()
}

// withEnv adapts command action to the opened env.
func withEnv(action func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := newEnv(c)
		if err != nil {
			return err
		}
		defer e.close()

		return action(c, e)
	}
}

// signer decrypts the signer account proving its possession and returns the
// account identity.
func (e *env) signer(c *cli.Context) (util.Uint160, error) {
	path := c.String("wallet")
	if path == "" {
		path = e.cfg.Wallet.Path
	}
	if path == "" {
		return util.Uint160{}, errors.New("signer wallet is not set")
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("open wallet: %w", err)
	}

	h := w.GetChangeAddress()
	if s := c.String("address"); s != "" {
		h, err = address.StringToUint160(s)
		if err != nil {
			return util.Uint160{}, fmt.Errorf("signer address: %w", err)
		}
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return util.Uint160{}, fmt.Errorf("account %s is missing in the wallet", address.Uint160ToString(h))
	}

	err = acc.Decrypt(c.String("password"), w.Scrypt)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc.ScriptHash(), nil
}

func parseAddress(name, s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, fmt.Errorf("missing %s address", name)
	}
	h, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%s address: %w", name, err)
	}
	return h, nil
}

func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("missing amount")
	}
	v, err := fixedn.FromString(s, balance.Decimals())
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return v.Uint64(), nil
}

func formatAmount(v uint64) string {
	return fixedn.ToString(new(big.Int).SetUint64(v), balance.Decimals())
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type (
	receiptJSON struct {
		ID     string      `json:"id"`
		Method string      `json:"method"`
		Time   int64       `json:"time"`
		Events []eventJSON `json:"events"`
	}

	eventJSON struct {
		Emitter string          `json:"emitter"`
		Name    string          `json:"name"`
		State   json.RawMessage `json:"state"`
	}
)

func printReceipt(c *cli.Context, r *ledger.Receipt) error {
	res := receiptJSON{
		ID:     r.ID.String(),
		Method: r.Method,
		Time:   r.Time,
		Events: make([]eventJSON, 0, len(r.Events)),
	}

	for _, ev := range r.Events {
		data, err := stackitem.ToJSONWithTypes(ev.Item)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", ev.Name, err)
		}
		res.Events = append(res.Events, eventJSON{
			Emitter: address.Uint160ToString(ev.ScriptHash),
			Name:    ev.Name,
			State:   data,
		})
	}

	return printJSON(c, res)
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}
