package database

// Column represents a table column with its metadata.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
	IsPrimary  bool
	Default    string
	OrdinalPos int
}

// Field describes one result column as emitted by the driver.
type Field struct {
	Name     string
	DataType string
}

// RawResult is the untouched output of a query: the driver's field list and
// the rows as scalar values (string, int64, float64, bool, time.Time or nil),
// positionally aligned with Fields.
type RawResult struct {
	Fields []Field
	Rows   [][]any
}

// Target describes a registered grading database.
type Target struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Driver string `json:"driver"`
}
