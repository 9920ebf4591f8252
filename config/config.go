// Package config contains configuration of the custody ledger host.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the root of the configuration file.
	Config struct {
		Ledger   Ledger   `yaml:"Ledger"`
		Logger   Logger   `yaml:"Logger"`
		Platform Platform `yaml:"Platform"`
		Wallet   Wallet   `yaml:"Wallet"`
	}

	// Ledger configures the ledger store.
	Ledger struct {
		DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	}

	// Logger configures logging.
	Logger struct {
		// One of zap levels: debug, info, warn, error.
		Level string `yaml:"Level"`
		// Encoding is either "console" or "json".
		Encoding string `yaml:"Encoding"`
	}

	// Platform configures platform side of the bounty payments.
	Platform struct {
		// Wallet is the Neo address platform fees are paid to.
		Wallet string `yaml:"Wallet"`
	}

	// Wallet configures the signer wallet of the host.
	Wallet struct {
		// Path to NEP-6 wallet file.
		Path string `yaml:"Path"`
	}
)

// DefaultPath is the configuration file looked up when no path is given.
const DefaultPath = "custody.yml"

// ErrInvalid is returned for configurations failing validation.
var ErrInvalid = errors.New("invalid configuration")

// Default returns configuration with in-memory store and info logging.
func Default() Config {
	return Config{
		Ledger: Ledger{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
		},
		Logger: Logger{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads configuration from the YAML file. Missing fields keep default
// values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	db := c.Ledger.DBConfiguration
	switch db.Type {
	case dbconfig.InMemoryDB:
	case dbconfig.LevelDB:
		if db.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("%w: empty LevelDB data directory", ErrInvalid)
		}
	case dbconfig.BoltDB:
		if db.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("%w: empty BoltDB file path", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalid, db.Type)
	}

	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("%w: logger level: %w", ErrInvalid, err)
	}

	switch c.Logger.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: unknown logger encoding %q", ErrInvalid, c.Logger.Encoding)
	}

	if c.Platform.Wallet != "" {
		if _, err := c.Platform.Address(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	return nil
}

// Address returns the platform wallet identity.
func (p Platform) Address() (util.Uint160, error) {
	if p.Wallet == "" {
		return util.Uint160{}, errors.New("platform wallet is not set")
	}
	h, err := address.StringToUint160(p.Wallet)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("platform wallet %q: %w", p.Wallet, err)
	}
	return h, nil
}

// Build constructs logger according to the configuration.
func (l Logger) Build() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("logger level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if l.Encoding != "" {
		cfg.Encoding = l.Encoding
	}

	return cfg.Build()
}
