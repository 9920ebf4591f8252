package escrow

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vulnera/custody/common"
)

// PaymentProcessedEvent represents "PaymentProcessed" event emitted by the
// escrow. Amount is what the hunter received, without the platform fee.
type PaymentProcessedEvent struct {
	BountyID     string
	SubmissionID string
	HunterWallet util.Uint160
	Amount       uint64
	PlatformFee  uint64
}

// BountyClosedEvent represents "BountyClosed" event emitted by the escrow.
type BountyClosedEvent struct {
	BountyID        string
	RemainingAmount uint64
}

// PaymentProcessedEventsFromExecution retrieves a set of all emitted events
// with "PaymentProcessed" name from the provided execution.
func PaymentProcessedEventsFromExecution(ex *state.Execution) ([]*PaymentProcessedEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*PaymentProcessedEvent
	for i, e := range ex.Events {
		if e.Name != "PaymentProcessed" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(PaymentProcessedEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize PaymentProcessedEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PaymentProcessedEvent
// or returns an error if it's not possible to do to so.
func (e *PaymentProcessedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 5)
	if err != nil {
		return err
	}

	e.BountyID, err = common.StringFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field BountyID: %w", err)
	}

	e.SubmissionID, err = common.StringFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field SubmissionID: %w", err)
	}

	e.HunterWallet, err = common.HashFromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field HunterWallet: %w", err)
	}

	e.Amount, err = common.AmountFromItem(arr[3])
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.PlatformFee, err = common.AmountFromItem(arr[4])
	if err != nil {
		return fmt.Errorf("field PlatformFee: %w", err)
	}

	return nil
}

// BountyClosedEventsFromExecution retrieves a set of all emitted events
// with "BountyClosed" name from the provided execution.
func BountyClosedEventsFromExecution(ex *state.Execution) ([]*BountyClosedEvent, error) {
	if ex == nil {
		return nil, errors.New("nil execution")
	}

	var res []*BountyClosedEvent
	for i, e := range ex.Events {
		if e.Name != "BountyClosed" || !e.ScriptHash.Equals(Hash) {
			continue
		}
		event := new(BountyClosedEvent)
		err := event.FromStackItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize BountyClosedEvent from stackitem (event #%d): %w", i, err)
		}
		res = append(res, event)
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to BountyClosedEvent or
// returns an error if it's not possible to do to so.
func (e *BountyClosedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.NotificationFields(item, 2)
	if err != nil {
		return err
	}

	e.BountyID, err = common.StringFromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field BountyID: %w", err)
	}

	e.RemainingAmount, err = common.AmountFromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field RemainingAmount: %w", err)
	}

	return nil
}
