package tabular

// Table is raw tabular content: trimmed headers plus rows of cell text
type Table struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune   // CSV only
	Sheet     string // XLSX only
}

// ReaderConfig controls how raw files are read
type ReaderConfig struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t', '|'.
	Delimiter rune
	// Sheet for XLSX. If empty, the first sheet is used.
	Sheet string
	// MaxRows rejects input with more data rows; 0 means unlimited.
	MaxRows int
}

// DefaultReaderConfig reads every row. Upload size is bounded at the HTTP layer.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{}
}

// File types understood by the readers
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)
