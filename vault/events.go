package vault

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vulnera/custody/common"
)

// DepositEvent represents "Deposit" event emitted by the vault.
type DepositEvent struct {
	Depositor util.Uint160
	Amount    uint64
	Timestamp int64
}

// WithdrawEvent represents "Withdraw" event emitted by the vault.
type WithdrawEvent struct {
	Recipient util.Uint160
	Amount    uint64
	Timestamp int64
}

// DepositEventsFromExecution retrieves a set of all emitted events
// with "Deposit" name from the provided execution.
func DepositEventsFromExecution(ex *state.Execution) ([]*DepositEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*DepositEvent
	for i, e := range ex.Events {
		if e.Name != "Deposit" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(DepositEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize DepositEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 3)
	if err != nil {
		return err
	}

	e.Depositor, err = common.HashFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	e.Amount, err = common.AmountFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Timestamp, err = common.TimestampFromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field Timestamp: %w", err)
	}

	return nil
}

// WithdrawEventsFromExecution retrieves a set of all emitted events
// with "Withdraw" name from the provided execution.
func WithdrawEventsFromExecution(ex *state.Execution) ([]*WithdrawEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*WithdrawEvent
	for i, e := range ex.Events {
		if e.Name != "Withdraw" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(WithdrawEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize WithdrawEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 3)
	if err != nil {
		return err
	}

	e.Recipient, err = common.HashFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	e.Amount, err = common.AmountFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Timestamp, err = common.TimestampFromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field Timestamp: %w", err)
	}

	return nil
}
