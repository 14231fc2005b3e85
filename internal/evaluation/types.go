package evaluation

// Row maps a column name to a scalar value: string, int64, float64, bool,
// time.Time or nil.
type Row map[string]any

// QueryResult is the output of executing one query. RowCount always equals
// len(Rows).
type QueryResult struct {
	Columns         []string `json:"columns"`
	Rows            []Row    `json:"rows"`
	RowCount        int      `json:"rowCount"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
}

// NormalizedResult is a QueryResult canonicalized for comparison.
type NormalizedResult struct {
	Columns []string
	Rows    []Row
}

// DifferenceType classifies a ComparisonDifference.
type DifferenceType string

const (
	ColumnMismatch   DifferenceType = "COLUMN_MISMATCH"
	RowCountMismatch DifferenceType = "ROW_COUNT_MISMATCH"
	DataMismatch     DifferenceType = "DATA_MISMATCH"
)

// Position locates a data mismatch. Row is 1-based in sorted order.
type Position struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
}

// ComparisonDifference is one discrepancy between two results.
type ComparisonDifference struct {
	Type        DifferenceType `json:"type"`
	Description string         `json:"description"`
	Expected    any            `json:"expected,omitempty"`
	Actual      any            `json:"actual,omitempty"`
	Position    *Position      `json:"position,omitempty"`
}

// ComparisonResult is the outcome of comparing a student result to the
// reference result.
type ComparisonResult struct {
	ColumnsMatch  bool                   `json:"columnsMatch"`
	RowCountMatch bool                   `json:"rowCountMatch"`
	DataMatches   bool                   `json:"dataMatches"`
	IsExactMatch  bool                   `json:"isExactMatch"`
	Differences   []ComparisonDifference `json:"differences"`
}

// Category is the discrete outcome of an evaluation.
type Category string

const (
	CategoryCorrect        Category = "CORRECT"
	CategoryWrongColumns   Category = "WRONG_COLUMNS"
	CategoryWrongRowCount  Category = "WRONG_ROW_COUNT"
	CategoryWrongData      Category = "WRONG_DATA"
	CategorySyntaxError    Category = "SYNTAX_ERROR"
	CategoryExecutionError Category = "EXECUTION_ERROR"
	CategoryTimeoutError   Category = "TIMEOUT_ERROR"
)

// EvaluationResult is the verdict returned to callers.
type EvaluationResult struct {
	IsCorrect        bool              `json:"isCorrect"`
	Category         Category          `json:"category"`
	Feedback         string            `json:"feedback"`
	ExecutionTimeMs  int64             `json:"executionTimeMs"`
	TechnicalDetails *ComparisonResult `json:"technicalDetails,omitempty"`
}

// Report carries an EvaluationResult together with the executed results, for
// callers that display the student's rows.
type Report struct {
	Result   EvaluationResult
	Student  *QueryResult
	Expected *QueryResult
}
