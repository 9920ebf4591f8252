/*
Package ledger executes custody operations.

Ledger is the host side of the custody core. It owns the key-value store,
provides operations with the invocation context (signers, time, native value
transferer) and makes every operation atomic: writes go to a MemCachedStore
overlay that is persisted only when the operation succeeds. A failed
operation leaves the store exactly as it was.

Ledger does not verify signatures. Identities passed to WithSigners are
considered verified by the caller.

Successful invocations return Receipt with the notifications emitted by the
operation. Typed events can be retrieved from it with the
...EventsFromExecution functions of vault, escrow and balance packages.
*/
package ledger
