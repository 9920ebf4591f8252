package balance

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vulnera/custody/common"
)

// TransferEvent represents "Transfer" event emitted by the ledger. Zero From
// means mint, zero To means burn.
type TransferEvent struct {
	From   util.Uint160
	To     util.Uint160
	Amount uint64
}

// TransferXEvent represents "TransferX" event emitted by the ledger.
type TransferXEvent struct {
	From    util.Uint160
	To      util.Uint160
	Amount  uint64
	Details []byte
}

// TransferEventsFromExecution retrieves a set of all emitted events
// with "Transfer" name from the provided execution.
func TransferEventsFromExecution(ex *state.Execution) ([]*TransferEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*TransferEvent
	for i, e := range ex.Events {
		if e.Name != "Transfer" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(TransferEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize TransferEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to TransferEvent or
// returns an error if it's not possible to do to so.
func (e *TransferEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 3)
	if err != nil {
		return err
	}

	e.From, err = common.HashFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	e.To, err = common.HashFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	e.Amount, err = common.AmountFromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// TransferXEventsFromExecution retrieves a set of all emitted events
// with "TransferX" name from the provided execution.
func TransferXEventsFromExecution(ex *state.Execution) ([]*TransferXEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*TransferXEvent
	for i, e := range ex.Events {
		if e.Name != "TransferX" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(TransferXEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize TransferXEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to TransferXEvent or
// returns an error if it's not possible to do to so.
func (e *TransferXEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 4)
	if err != nil {
		return err
	}

	e.From, err = common.HashFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	e.To, err = common.HashFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	e.Amount, err = common.AmountFromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Details, err = arr[3].TryBytes()
	if err != nil {
		return fmt.Errorf("field Details: %w", err)
	}

	return nil
}
