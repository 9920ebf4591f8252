package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	p := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(p, []byte(data), 0600))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, dbconfig.InMemoryDB, cfg.Ledger.DBConfiguration.Type)

	_, err := cfg.Platform.Address()
	require.Error(t, err)

	log, err := cfg.Logger.Build()
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestLoad(t *testing.T) {
	platform := address.Uint160ToString(util.Uint160{1, 2, 3})

	p := writeConfig(t, `
Ledger:
  DBConfiguration:
    Type: leveldb
    LevelDBOptions:
      DataDirectoryPath: ./chains/custody
Logger:
  Level: debug
  Encoding: json
Platform:
  Wallet: `+platform+`
Wallet:
  Path: wallet.json
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, dbconfig.LevelDB, cfg.Ledger.DBConfiguration.Type)
	require.Equal(t, "./chains/custody", cfg.Ledger.DBConfiguration.LevelDBOptions.DataDirectoryPath)
	require.Equal(t, "debug", cfg.Logger.Level)
	require.Equal(t, "json", cfg.Logger.Encoding)
	require.Equal(t, "wallet.json", cfg.Wallet.Path)

	h, err := cfg.Platform.Address()
	require.NoError(t, err)
	require.Equal(t, util.Uint160{1, 2, 3}, h)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "Wallet:\n  Path: w.json\n"))
		require.NoError(t, err)
		require.Equal(t, "info", cfg.Logger.Level)
		require.Equal(t, dbconfig.InMemoryDB, cfg.Ledger.DBConfiguration.Type)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.yml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeConfig(t, "Logger: [\n"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	for name, mod := range map[string]func(*Config){
		"unknown db":   func(c *Config) { c.Ledger.DBConfiguration.Type = "redis" },
		"leveldb path": func(c *Config) { c.Ledger.DBConfiguration.Type = dbconfig.LevelDB },
		"boltdb path":  func(c *Config) { c.Ledger.DBConfiguration.Type = dbconfig.BoltDB },
		"level":        func(c *Config) { c.Logger.Level = "loud" },
		"encoding":     func(c *Config) { c.Logger.Encoding = "xml" },
		"platform":     func(c *Config) { c.Platform.Wallet = "not an address" },
	} {
		cfg := Default()
		mod(&cfg)
		require.ErrorIs(t, cfg.Validate(), ErrInvalid, name)
	}
}
