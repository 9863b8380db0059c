package coercer

import (
	"math"
	"strconv"
	"strings"

	"solardash/domain/dataset"
)

// TypeCoercer handles deterministic value parsing and column type inference
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing values that must parse as numbers
	MissingTokens    []string `json:"missing_tokens"`    // compared case-insensitively after trimming
	// Delimiter is the source file's field separator. In comma-separated
	// files a comma inside a value is never a decimal separator.
	Delimiter rune `json:"delimiter"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		MissingTokens:    []string{"", "na", "n/a", "nan", "null", "none", "-"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.NumericThreshold <= 0 || config.NumericThreshold > 1 {
		config.NumericThreshold = DefaultCoercionConfig().NumericThreshold
	}
	missing := make(map[string]struct{}, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether the raw cell is a missing-value token
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ParseNumeric parses a cell as a number.
// Handles international formats: parentheses for negatives, European decimals, currency symbols
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" || c.IsMissing(cleanVal) {
		return math.NaN(), false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma is followed by at most three digits
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && isDigits(afterComma) && strings.LastIndex(cleanVal, ".") < commaIdx {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma && isGrouped(cleanVal) && (c.config.Delimiter == ',' || strings.Count(cleanVal, ",") > 1):
		// 1,234 or 1,234,567
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	case hasComma && c.config.Delimiter == ',':
		return math.NaN(), false
	case hasComma:
		// a lone comma is read as a decimal separator
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return math.NaN(), false
	}
	return val, true
}

// AnalyzeColumn inspects every value of a column and recommends its kind
func (c *TypeCoercer) AnalyzeColumn(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	distinct := make(map[string]struct{})

	for _, v := range values {
		if c.IsMissing(v) {
			analysis.MissingCount++
			continue
		}
		analysis.ValidCount++
		distinct[strings.TrimSpace(v)] = struct{}{}
		if _, ok := c.ParseNumeric(v); ok {
			analysis.NumericCount++
		}
	}

	analysis.DistinctCount = len(distinct)
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// determineRecommendedKind chooses numeric only when enough values parse
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.ColumnKind {
	if analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	return dataset.KindCategorical
}

// isGrouped reports whether s is an integer written with comma thousands groups
func isGrouped(s string) bool {
	groups := strings.Split(strings.TrimPrefix(s, "-"), ",")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 || !isDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	ValidCount      int                `json:"valid_count"`
	MissingCount    int                `json:"missing_count"`
	NumericCount    int                `json:"numeric_count"`
	DistinctCount   int                `json:"distinct_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	RecommendedKind dataset.ColumnKind `json:"recommended_kind"`
}
