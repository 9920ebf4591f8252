package common

import (
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// Context is the state a single ledger operation runs against. It is created
// by the executor for every invocation and is not safe for concurrent use.
//
// Store is an overlay: everything written to it is discarded unless the
// executor persists it after the operation succeeds, so operations may fail at
// any step without cleaning up.
type Context struct {
	// Store holds account records of the invocation.
	Store *storage.MemCachedStore

	// Native moves native value between identities.
	Native Transferer

	// Log is never nil.
	Log *zap.Logger

	signers       []util.Uint160
	time          int64
	notifications []state.NotificationEvent
}

// NewContext returns invocation context over the given overlay. time is the
// current time in seconds since epoch, signers are the identities the host has
// verified signatures of.
func NewContext(st *storage.MemCachedStore, native Transferer, log *zap.Logger, time int64, signers ...util.Uint160) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		Store:   st,
		Native:  native,
		Log:     log,
		signers: signers,
		time:    time,
	}
}

// Time returns invocation time in seconds.
func (ic *Context) Time() int64 {
	return ic.time
}

// Signers returns a copy of identities that signed the invocation.
func (ic *Context) Signers() []util.Uint160 {
	return append([]util.Uint160(nil), ic.signers...)
}

// Notify adds notification with the given name and arguments emitted on
// behalf of the specified hash.
func (ic *Context) Notify(h util.Uint160, name string, args ...stackitem.Item) {
	ic.notifications = append(ic.notifications, state.NotificationEvent{
		ScriptHash: h,
		Name:       name,
		Item:       stackitem.NewArray(args),
	})
}

// Notifications returns all notifications emitted so far.
func (ic *Context) Notifications() []state.NotificationEvent {
	return ic.notifications
}
