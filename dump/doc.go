/*
Package dump provides I/O operations for snapshots of the custody ledger
storage.

A snapshot consists of two files in the same directory:

	'<label>-<time>-storage.csv': raw storage items
	'<label>-<time>-records.json': decoded vault, escrow and wallet records

Storage CSV rows are 'section,key,value' where section names the ledger
component owning the item and binary key-value are base64-encoded. Records
JSON is for humans and auditing tools, it is never read back. Snapshots can be
restored into an empty store with Reader.Restore.
*/
package dump
