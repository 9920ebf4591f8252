package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vulnera/custody/balance"
	"github.com/vulnera/custody/common"
	"go.uber.org/zap"
)

// Options groups optional parameters of New and Open.
type Options struct {
	// Writes invocation results into the log. Defaults to zap.NewNop().
	Logger *zap.Logger

	// Source of the invocation time. Defaults to time.Now.
	Clock func() time.Time

	// Native value transferer used by the state machines. Defaults to
	// balance.Native().
	Native common.Transferer

	// Registerer for the ledger metrics. Metrics are not exported if nil.
	Registerer prometheus.Registerer
}

// Receipt is a result of the successful invocation.
type Receipt struct {
	// ID is unique per invocation.
	ID uuid.UUID
	// Method is the name of the invoked operation, e.g. "vault.deposit".
	Method string
	// Time is the invocation time in seconds.
	Time int64

	state.Execution
}

// Ledger executes custody operations over a key-value store. Each invocation
// is a single atomic unit: its writes reach the store only if it succeeds.
// Invocations are serialized, so no two of them touch the store at the same
// time.
type Ledger struct {
	mtx   sync.Mutex
	store storage.Store

	log     *zap.Logger
	clock   func() time.Time
	native  common.Transferer
	metrics *metrics
}

var versionKey = []byte{'m'}

// Open creates the store described by cfg and opens Ledger over it.
func Open(cfg dbconfig.DBConfiguration, opts Options) (*Ledger, error) {
	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	l, err := New(st, opts)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return l, nil
}

// New opens Ledger over the given store. Empty store is stamped with the
// current storage version, others are checked to be compatible.
func New(st storage.Store, opts Options) (*Ledger, error) {
	l := &Ledger{
		store:   st,
		log:     opts.Logger,
		clock:   opts.Clock,
		native:  opts.Native,
		metrics: newMetrics(),
	}

	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.native == nil {
		l.native = balance.Native()
	}
	if opts.Registerer != nil {
		if err := l.metrics.register(opts.Registerer); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	if err := l.checkVersion(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Ledger) checkVersion() error {
	overlay := storage.NewMemCachedStore(l.store)

	raw, err := overlay.Get(versionKey)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		overlay.Put(versionKey, binary.LittleEndian.AppendUint32(nil, common.Version))
		if _, err := overlay.Persist(); err != nil {
			return fmt.Errorf("write storage version: %w", err)
		}
		l.log.Info("storage initialized", zap.Int("version", common.Version))
		return nil
	case err != nil:
		return fmt.Errorf("read storage version: %w", err)
	case len(raw) != 4:
		return fmt.Errorf("%w: invalid version record length %d", common.ErrVersionMismatch, len(raw))
	}

	return common.CheckVersion(int(binary.LittleEndian.Uint32(raw)))
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.store.Close()
}

// Invoke runs fn as a single atomic operation with the given signers. It
// returns the receipt if fn succeeds and its changes are persisted. If fn
// fails, nothing is written and its error is returned wrapped with the
// method name.
func (l *Ledger) Invoke(ctx context.Context, method string, signers []util.Uint160, fn func(ic *common.Context) error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	var (
		start   = time.Now()
		id      = uuid.New()
		now     = l.clock().Unix()
		overlay = storage.NewMemCachedStore(l.store)
		log     = l.log.With(zap.String("method", method), zap.Stringer("id", id))
		ic      = common.NewContext(overlay, l.native, log, now, signers...)
	)

	err := fn(ic)
	if err == nil {
		_, err = overlay.Persist()
		if err != nil {
			err = fmt.Errorf("persist changes: %w", err)
		}
	}

	l.metrics.observe(method, err, time.Since(start))

	if err != nil {
		log.Warn("invocation failed", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	log.Debug("invocation persisted", zap.Int("notifications", len(ic.Notifications())))

	return &Receipt{
		ID:     id,
		Method: method,
		Time:   now,
		Execution: state.Execution{
			Trigger: trigger.Application,
			VMState: vmstate.Halt,
			Events:  ic.Notifications(),
		},
	}, nil
}

// view runs read-only fn over a throwaway overlay.
func (l *Ledger) view(fn func(st *storage.MemCachedStore) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return fn(storage.NewMemCachedStore(l.store))
}

// Seek iterates over persisted storage items matching rng. Items passed to f
// must not be retained or modified.
func (l *Ledger) Seek(rng storage.SeekRange, f func(k, v []byte) bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.store.Seek(rng, f)
}
