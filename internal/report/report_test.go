package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"solardash/domain/dataset"
	"solardash/internal/analysis"

	"github.com/stretchr/testify/assert"
)

func sampleData() Data {
	return Data{
		DatasetName:  "solar_data.csv",
		Source:       dataset.SourceFile,
		TotalRows:    12500,
		ViewRows:     3,
		GeoColumn:    "country",
		RegionColumn: "region",
		Selection:    dataset.NewSelection("GHI", "Kenya", "Benin"),
		Top: []dataset.GroupSummary{
			{Rank: 1, Group: "Kenya", Count: 2, Mean: 210, Median: 210, Std: 14.142135, Min: 200, Max: 220},
			{Rank: 2, Group: "Benin", Count: 1, Mean: 150, Median: 150, Std: math.NaN(), Min: 150, Max: 150},
		},
		Boxes: []analysis.BoxStats{
			{Group: "Benin", Count: 1, Q1: 150, Median: 150, Q3: 150, LowerWhisker: 150, UpperWhisker: 150},
		},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(sampleData()))

	assert.Contains(t, md, "# Solar GHI summary: solar\\_data.csv")
	assert.Contains(t, md, "12,500 rows")
	assert.Contains(t, md, "**Selection:** Benin, Kenya")
	assert.Contains(t, md, "## Top countries by mean GHI")
	assert.Contains(t, md, "| 1 | Kenya | 2 | 210.00 | 210.00 | 14.14 | 200.00 | 220.00 |")
	assert.Contains(t, md, "| 2 | Benin | 1 | 150.00 | 150.00 | — | 150.00 | 150.00 |")
	assert.NotContains(t, md, "regions", "region table skipped without rows")
	assert.Contains(t, md, "## GHI distribution")
}

func TestMarkdownAllSelectionAndEmpty(t *testing.T) {
	d := sampleData()
	d.Selection = dataset.NewSelection("DNI")
	d.Top = nil

	md := string(Markdown(d))
	assert.Contains(t, md, "**Selection:** all countries")
	assert.Contains(t, md, "_No data for the current selection._")
}

func TestHTML(t *testing.T) {
	page := string(HTML(sampleData()))

	assert.True(t, strings.Contains(page, "<html"))
	assert.Contains(t, page, "<title>Solar GHI summary: solar_data.csv</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>Kenya</td>")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234.57", FormatNumber(1234.567))
	assert.Equal(t, "0.00", FormatNumber(0))
	assert.Equal(t, "-3.50", FormatNumber(-3.5))
	assert.Equal(t, Missing, FormatNumber(math.NaN()))
	assert.Equal(t, "1,000,000", FormatCount(1000000))
}

func TestHTMLEscapesDatasetNameAndGroups(t *testing.T) {
	d := sampleData()
	d.DatasetName = "<img src=x onerror=alert(1)>.csv"
	d.Top = []dataset.GroupSummary{
		{Rank: 1, Group: "<script>alert(2)</script>", Count: 1, Mean: 1, Median: 1, Std: math.NaN(), Min: 1, Max: 1},
		{Rank: 2, Group: "Fish & Chips", Count: 1, Mean: 0, Median: 0, Std: math.NaN(), Min: 0, Max: 0},
	}

	page := string(HTML(d))
	assert.NotContains(t, page, "<script")
	assert.NotContains(t, page, "<img")
	assert.Contains(t, page, "&lt;script&gt;alert(2)&lt;/script&gt;")
	assert.Contains(t, page, "Fish &amp; Chips")

	md := string(Markdown(d))
	assert.Contains(t, md, `\<script\>`)
}

func TestTitleMultiByte(t *testing.T) {
	assert.Equal(t, "État", title("état"))
	assert.Equal(t, "Country", title("country"))
	assert.Equal(t, "", title(""))

	d := sampleData()
	d.GeoColumn = "état"
	assert.Contains(t, string(Markdown(d)), "| Rank | État | Count |")
}
