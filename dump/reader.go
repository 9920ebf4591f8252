package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// ErrStoreNotEmpty is returned by Restore into a store already holding data.
var ErrStoreNotEmpty = errors.New("target store is not empty")

// IterateDumps iterates over all snapshots collected by the Creator in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, storageFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		err = initDumpStreams(&streams, filepath.Dir(path), id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromStream(streams.storageItems)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

type kv struct{ k, v []byte }

// Reader reads storage items collected in the superior dump.
type Reader struct {
	sections []string
	mStorage map[string][]kv
}

func (x *Reader) fromStream(rStorageItems io.Reader) error {
	var rec []string
	var err error

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	x.sections = x.sections[:0]
	if x.mStorage != nil {
		clear(x.mStorage)
	} else {
		x.mStorage = make(map[string][]kv)
	}

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		var _kv kv

		// out-of-range safety guaranteed by csv settings
		_kv.k, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.v, err = _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		if _, ok := x.mStorage[rec[0]]; !ok {
			x.sections = append(x.sections, rec[0])
		}
		x.mStorage[rec[0]] = append(x.mStorage[rec[0]], _kv)
	}
}

// IterateStorage iterates over all storage items from the superior dump in
// the order they were written and passes them into f.
func (x *Reader) IterateStorage(f func(section string, key, value []byte)) {
	for _, name := range x.sections {
		kvs := x.mStorage[name]
		for i := range kvs {
			f(name, kvs[i].k, kvs[i].v)
		}
	}
}

// Restore writes all storage items of the dump into st. Either all items are
// written or none. Restore refuses to overwrite existing data.
func (x *Reader) Restore(st storage.Store) error {
	var empty = true

	st.Seek(storage.SeekRange{}, func(_, _ []byte) bool {
		empty = false
		return false
	})
	if !empty {
		return ErrStoreNotEmpty
	}

	cache := storage.NewMemCachedStore(st)

	x.IterateStorage(func(_ string, key, value []byte) {
		cache.Put(key, value)
	})

	_, err := cache.Persist()
	if err != nil {
		return fmt.Errorf("persist restored items: %w", err)
	}

	return nil
}
