package dump

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ID is a unique identifier of the snapshot.
type ID struct {
	// Label of the snapshot source (e.g. production, staging).
	Label string
	// Time the snapshot was taken at, in seconds.
	Time int64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatInt(x.Time, 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseInt(ss[1], 10, 64)
	if err != nil {
		return fmt.Errorf("decode time from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Time = n

	return nil
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

// dumpStreams groups data streams for records and storage.
type dumpStreams struct {
	records, storageItems io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	if x.storageItems != nil {
		_ = x.storageItems.Close()
	}
	if x.records != nil {
		_ = x.records.Close()
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with storage items
	storageFileSuffix = "storage.csv"
	// suffix of file with decoded records
	recordsFileSuffix = "records.json"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, only storage stream is opened for
// reading. Otherwise, files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathStorage := filepath.Join(dir, strings.Join([]string{id.String(), storageFileSuffix}, sep))
	pathRecords := filepath.Join(dir, strings.Join([]string{id.String(), recordsFileSuffix}, sep))

	if read {
		d.storageItems, err = os.Open(pathStorage)
		if err != nil {
			return fmt.Errorf("open file with storage items: %w", err)
		}
		return nil
	}

	if err = checkFileNotExists(pathStorage); err != nil {
		return err
	}
	if err = checkFileNotExists(pathRecords); err != nil {
		return err
	}

	d.storageItems, err = os.OpenFile(pathStorage, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.records, err = os.OpenFile(pathRecords, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		_ = d.storageItems.Close()
		return fmt.Errorf("open file with records: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
