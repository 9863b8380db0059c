// Package report builds the downloadable summary of a dashboard view as
// markdown and as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"solardash/domain/dataset"
	"solardash/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Data is everything a report shows
type Data struct {
	DatasetName  string
	Source       dataset.Source
	TotalRows    int
	ViewRows     int
	GeoColumn    string
	RegionColumn string
	Selection    dataset.Selection
	Top          []dataset.GroupSummary
	Regions      []dataset.GroupSummary
	Boxes        []analysis.BoxStats
	GeneratedAt  time.Time
}

// Title is the report heading
func (d Data) Title() string {
	return fmt.Sprintf("Solar %s summary: %s", d.Selection.Metric, d.DatasetName)
}

// Markdown renders the report as GitHub-flavoured markdown
func Markdown(d Data) []byte {
	var b bytes.Buffer
	metric := d.Selection.Metric

	fmt.Fprintf(&b, "# %s\n\n", escape(d.Title()))
	fmt.Fprintf(&b, "- **Dataset:** %s (%s, %s rows)\n", escape(d.DatasetName), d.Source, FormatCount(d.TotalRows))
	fmt.Fprintf(&b, "- **Selection:** %s\n", escape(selectionLabel(d.Selection, d.GeoColumn)))
	fmt.Fprintf(&b, "- **Rows in view:** %s\n", FormatCount(d.ViewRows))
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", d.GeneratedAt.UTC().Format(time.RFC3339))

	fmt.Fprintf(&b, "## Top %s by mean %s\n\n", plural(len(d.Top), d.GeoColumn), metric)
	writeSummaryTable(&b, d.GeoColumn, d.Top)

	if d.RegionColumn != "" && len(d.Regions) > 0 {
		fmt.Fprintf(&b, "## Top %s by mean %s\n\n", plural(len(d.Regions), d.RegionColumn), metric)
		writeSummaryTable(&b, d.RegionColumn, d.Regions)
	}

	if len(d.Boxes) > 0 {
		fmt.Fprintf(&b, "## %s distribution\n\n", metric)
		fmt.Fprintf(&b, "| %s | Count | Q1 | Median | Q3 | Whiskers | Outliers |\n", title(d.GeoColumn))
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, box := range d.Boxes {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s – %s | %d |\n",
				escape(box.Group), FormatCount(box.Count), FormatNumber(box.Q1), FormatNumber(box.Median),
				FormatNumber(box.Q3), FormatNumber(box.LowerWhisker), FormatNumber(box.UpperWhisker), len(box.Outliers))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// HTML renders the markdown report as a complete HTML page
func HTML(d Data) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: d.Title(),
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Head:  []byte(reportCSS),
	})
	return markdown.ToHTML(Markdown(d), p, renderer)
}

func writeSummaryTable(b *bytes.Buffer, groupColumn string, rows []dataset.GroupSummary) {
	if len(rows) == 0 {
		b.WriteString("_No data for the current selection._\n\n")
		return
	}
	fmt.Fprintf(b, "| Rank | %s | Count | Mean | Median | Std | Min | Max |\n", title(groupColumn))
	b.WriteString("|---:|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range rows {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Rank, escape(s.Group), FormatCount(s.Count), FormatNumber(s.Mean), FormatNumber(s.Median),
			FormatNumber(s.Std), FormatNumber(s.Min), FormatNumber(s.Max))
	}
	b.WriteString("\n")
}

func selectionLabel(sel dataset.Selection, geoColumn string) string {
	if sel.IsAll() {
		return "all " + plural(2, geoColumn)
	}
	return strings.Join(sel.Values, ", ")
}

func plural(n int, noun string) string {
	noun = strings.ToLower(noun)
	if n == 1 {
		return noun
	}
	switch {
	case strings.HasSuffix(noun, "y") && !strings.HasSuffix(noun, "ay"):
		return strings.TrimSuffix(noun, "y") + "ies"
	case strings.HasSuffix(noun, "s"):
		return noun
	default:
		return noun + "s"
	}
}

func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// markdownEscaper also escapes HTML so file names and cell values stay text
var markdownEscaper = strings.NewReplacer(
	"|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`",
	"<", `\<`, ">", `\>`, "&", `\&`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

const reportCSS = `<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; color: #1f2933; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #d9e2ec; padding: 0.35rem 0.7rem; }
th { background: #f0f4f8; }
</style>
`
