package common

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// NotificationFields checks that item is an array of n elements and returns
// them.
func NotificationFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

// HashFromItem decodes identity. Null stands for the outside of the ledger
// and is decoded as zero hash.
func HashFromItem(item stackitem.Item) (util.Uint160, error) {
	if _, ok := item.(stackitem.Null); ok {
		return util.Uint160{}, nil
	}
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// AmountFromItem decodes native amount.
func AmountFromItem(item stackitem.Item) (uint64, error) {
	n, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("amount %s is out of range", n)
	}
	return n.Uint64(), nil
}

// TimestampFromItem decodes time in seconds.
func TimestampFromItem(item stackitem.Item) (int64, error) {
	n, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("timestamp %s is out of range", n)
	}
	return n.Int64(), nil
}

// StringFromItem decodes UTF-8 string.
func StringFromItem(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
