package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// Creator dumps the ledger storage. Output file format is described in the
// package docs.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	records Records

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps ledger storage into given directory.
// The dump is identified by specified ID. Resulting Creator should be closed
// when finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// Section returns StorageWriter for the named part of the storage.
func (x *Creator) Section(name string) *StorageWriter {
	return &StorageWriter{
		name: name,
		csv:  x.storageItemsCSV,
	}
}

// Records returns decoded records collected so far. They are written on
// Flush.
func (x *Creator) Records() *Records {
	return &x.records
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.records)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.records)
	if err != nil {
		return fmt.Errorf("encode records to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// StorageWriter writes data into the superior storage section dump.
type StorageWriter struct {
	name string
	csv  *csv.Writer
}

// Write saves given binary key-value into the dump as storage item.
func (x *StorageWriter) Write(key, value []byte) error {
	err := x.csv.Write([]string{
		x.name,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}
