package common

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrAccountNotFound is returned for operations on a record that was
	// never initialized or has already been closed.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAlreadyInitialized is returned when initializing a record that
	// exists.
	ErrAlreadyInitialized = errors.New("account already initialized")
)

// Key returns storage key of the record addressed by h under the given prefix.
func Key(prefix byte, h util.Uint160) []byte {
	return append([]byte{prefix}, h.BytesBE()...)
}

// GetSerialized reads and decodes the value stored by key into v. It returns
// ErrAccountNotFound if the key is missing.
func GetSerialized(st *storage.MemCachedStore, key []byte, v io.Serializable) error {
	data, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("get %x: %w", key, err)
	}

	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	if r.Err != nil {
		return fmt.Errorf("decode %x: %w", key, r.Err)
	}

	return nil
}

// SetSerialized serializes data and puts it into the store.
func SetSerialized(st *storage.MemCachedStore, key []byte, v io.Serializable) error {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return fmt.Errorf("encode %x: %w", key, w.Err)
	}

	st.Put(key, w.Bytes())

	return nil
}

// Exists checks whether there is a value stored by key.
func Exists(st *storage.MemCachedStore, key []byte) (bool, error) {
	_, err := st.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get %x: %w", key, err)
	}
}
