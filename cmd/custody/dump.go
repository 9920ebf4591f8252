package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/urfave/cli"
	"github.com/vulnera/custody/dump"
	"github.com/vulnera/custody/ledger"
	"go.uber.org/zap"
)

var dirFlag = cli.StringFlag{
	Name:  "dir",
	Value: "testdata",
	Usage: "Directory with ledger snapshots",
}

func dumpCommand() cli.Command {
	return cli.Command{
		Name:  "dump",
		Usage: "Write a snapshot of the ledger storage",
		Flags: []cli.Flag{
			dirFlag,
			cli.StringFlag{Name: "label", Usage: "Label of the ledger environment (e.g. 'staging')"},
		},
		Action: withEnv(ledgerDump),
	}
}

func restoreCommand() cli.Command {
	return cli.Command{
		Name:  "restore",
		Usage: "Restore the snapshot into the empty configured store",
		Flags: []cli.Flag{
			dirFlag,
			cli.StringFlag{Name: "label", Usage: "Label of the snapshot"},
			cli.Int64Flag{Name: "time", Usage: "Time of the snapshot, the latest one is used if not set"},
		},
		Action: ledgerRestore,
	}
}

func ledgerDump(c *cli.Context, e *env) error {
	label := c.String("label")
	if label == "" {
		return errors.New("missing snapshot label")
	}

	dir := c.String("dir")
	if err := mkdir(dir); err != nil {
		return err
	}

	id := dump.ID{Label: label, Time: time.Now().Unix()}

	cr, err := dump.NewCreator(dir, id)
	if err != nil {
		return fmt.Errorf("init snapshot creator: %w", err)
	}
	defer cr.Close()

	err = dump.Ledger(e.ledger, cr)
	if err != nil {
		return fmt.Errorf("collect ledger storage: %w", err)
	}

	err = cr.Flush()
	if err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	e.log.Info("snapshot written", zap.String("dir", dir), zap.Stringer("id", id))

	return nil
}

func ledgerRestore(c *cli.Context) error {
	label := c.String("label")
	if label == "" {
		return errors.New("missing snapshot label")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := cfg.Logger.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	err = restore(c.String("dir"), label, c.Int64("time"), cfg.Ledger.DBConfiguration, log)
	if err != nil {
		return err
	}
	return nil
}

func restore(dir, label string, t int64, cfg dbconfig.DBConfiguration, log *zap.Logger) error {
	var latest int64

	err := dump.IterateDumps(dir, func(id dump.ID, _ *dump.Reader) {
		if id.Label == label && (t == 0 && id.Time > latest || id.Time == t) {
			latest = id.Time
		}
	})
	if err != nil {
		return fmt.Errorf("scan snapshots: %w", err)
	}
	if latest == 0 {
		return fmt.Errorf("snapshot '%s' is missing in %s", label, dir)
	}

	st, err := storage.NewStore(cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	var restoreErr error
	err = dump.IterateDumps(dir, func(id dump.ID, r *dump.Reader) {
		if id.Label == label && id.Time == latest {
			restoreErr = r.Restore(st)
		}
	})
	if err == nil {
		err = restoreErr
	}
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("restore snapshot: %w", err)
	}

	// Opening the ledger checks the restored storage version.
	l, err := ledger.New(st, ledger.Options{Logger: log})
	if err != nil {
		_ = st.Close()
		return err
	}

	log.Info("snapshot restored", zap.String("label", label), zap.Int64("time", latest))

	return l.Close()
}
