package bulkgen

import "iter"

// Row is one CSV record, fields in header order.
type Row []string

// Rows is a lazy, single-use sequence of records.
type Rows = iter.Seq[Row]

// Table describes one output file of the schema.
type Table struct {
	Name   string
	Header []string
}

// File returns the CSV file name for the table.
func (t Table) File() string {
	return t.Name + ".csv"
}
