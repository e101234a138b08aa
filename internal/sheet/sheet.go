// Package sheet models the normalized row input of the pipeline: one Row
// per specification line, already trimmed and column-complete per the row
// source contract. The CSV reader in this package is the reference row
// source used by the CLI; spreadsheet extraction itself lives upstream.
package sheet

// Row is one normalized specification row. String fields arrive trimmed;
// Length and Occurs keep their source spelling and are parsed by the
// builder so that parse failures can be reported with sheet and row.
type Row struct {
	Sheet       string
	Num         int // 1-based data row number within the sheet
	Level       int
	Name        string
	Description string
	Length      string
	Datatype    string
	Occurs      string
	Optional    bool
	NullOK      bool
	NLS         bool
	Samples     string
	Remarks     string
	Physical    string
	TestValue   string
	HardRule    string
}

// Sheet is an ordered row sequence from one source sheet, with the
// provenance hash of the bytes it was read from.
type Sheet struct {
	Name string
	Hash string // "sha256:<hex>"
	Rows []Row
}
