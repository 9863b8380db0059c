package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"solardash/adapters/chart"
	"solardash/adapters/tabular"
	"solardash/app"
	"solardash/domain/dataset"
	"solardash/internal/analysis"
	internalDataset "solardash/internal/dataset"
	"solardash/internal/filter"
	"solardash/internal/report"
	"solardash/internal/session"
	"solardash/internal/testkit"
	"solardash/ports"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newViper binds the command's flags to SOLARDASH_* environment variables.
// Precedence: flags > env > defaults.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SOLARDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "CSV or XLSX data file (synthetic sample data when empty)")
	cmd.Flags().StringSlice("country", nil, "Geographic values to keep (repeatable; none keeps all)")
	cmd.Flags().String("metric", "", "Metric column (defaults to the first metric, e.g. GHI)")
	cmd.Flags().String("geo-column", "country", "Geographic column to group by")
	cmd.Flags().String("region-column", "region", "Region column for the region ranking")
}

// stringList reads a list flag. Values from the environment are separated by
// commas so that names like "Sierra Leone" survive.
func stringList(cmd *cobra.Command, v *viper.Viper, key string) []string {
	if f := cmd.Flags().Lookup(key); f != nil && f.Changed {
		return v.GetStringSlice(key)
	}
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadSelection loads the data file and builds the selection from flags
func loadSelection(cmd *cobra.Command, v *viper.Viper) (session.Session, error) {
	config := internalDataset.DefaultLoaderConfig()
	config.GeoColumn = v.GetString("geo-column")
	config.RegionColumn = v.GetString("region-column")
	loader := internalDataset.NewLoader(config)

	var (
		ds  *dataset.Dataset
		err error
	)
	if path := v.GetString("file"); path != "" {
		ds, err = loader.LoadFile(cmd.Context(), path)
		if err != nil {
			return session.Session{}, err
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "No --file given, using synthetic sample data")
		ds = testkit.NewTestKit(loader).Generator().Dataset()
	}

	metric := v.GetString("metric")
	if metric == "" {
		metric = ds.Schema.DefaultMetric()
	}
	sel := dataset.NewSelection(metric, stringList(cmd, v, "country")...)
	if _, err := filter.Filter(ds, sel); err != nil {
		return session.Session{}, err
	}
	return session.Session{Dataset: ds, Selection: sel}, nil
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print the ranked per-country summary of a metric",
		Long: `Print count, mean, median, sample standard deviation, min and max of a metric
per geographic value, ranked by mean.

Example: solardash summarize --file data/solar_data.csv --country Benin --country Togo --metric DNI --top 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			sess, err := loadSelection(cmd, v)
			if err != nil {
				return err
			}
			view, err := filter.Filter(sess.Dataset, sess.Selection)
			if err != nil {
				return err
			}

			column := v.GetString("by")
			if column == "" {
				column = sess.Dataset.Schema.GeoColumn
			}
			summaries, err := analysis.SummarizeBy(view, column, sess.Selection.Metric)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s by %s (%s of %s rows)\n", sess.Selection.Metric, column,
				report.FormatCount(view.Len()), report.FormatCount(sess.Dataset.Len()))
			renderSummaries(out, column, analysis.Rank(summaries, v.GetInt("top")))
			return nil
		},
	}
	addDataFlags(cmd)
	cmd.Flags().Int("top", 5, "Number of ranked rows to print (0 prints all)")
	cmd.Flags().String("by", "", "Categorical column to group by (defaults to the geographic column)")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered rows to CSV or XLSX",
		Long: `Write exactly the rows matching the selection, with every original column.
The output format follows the --out extension.

Example: solardash export --file data/solar_data.csv --country Benin --out benin.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			out := v.GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			fileType, err := tabular.FileTypeOf(out)
			if err != nil {
				return err
			}
			sess, err := loadSelection(cmd, v)
			if err != nil {
				return err
			}
			view, err := filter.Filter(sess.Dataset, sess.Selection)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if fileType == tabular.FileTypeXLSX {
				err = tabular.WriteXLSX(&buf, view, tabular.DefaultSheet)
			} else {
				err = tabular.WriteCSV(&buf, view)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows to %s\n", report.FormatCount(view.Len()), out)
			return nil
		},
	}
	addDataFlags(cmd)
	cmd.Flags().String("out", "", "Output file (.csv or .xlsx)")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the inferred column registry of a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			sess, err := loadSelection(cmd, v)
			if err != nil {
				return err
			}

			schema := sess.Dataset.Schema
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s rows, geographic column %q, metrics %s\n", sess.Dataset.Name,
				report.FormatCount(sess.Dataset.Len()), schema.GeoColumn, strings.Join(schema.Metrics, ", "))

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"#", "Column", "Kind", "Missing", "Distinct", "Role"})
			for _, col := range schema.Columns() {
				table.Append([]string{
					strconv.Itoa(col.Index + 1),
					col.Name,
					string(col.Kind),
					strconv.Itoa(col.Missing),
					strconv.Itoa(col.Distinct),
					role(schema, col),
				})
			}
			table.Render()
			return nil
		},
	}
	addDataFlags(cmd)
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the summary report as HTML or Markdown, optionally with the boxplot",
		Long: `Write the summary report of the selection. A .md output is written as
Markdown, anything else as a standalone HTML page. --chart additionally
writes the boxplot as .svg or .png.

Example: solardash report --file data/solar_data.csv --metric GHI --out report.html --chart ghi.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			out := v.GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			sess, err := loadSelection(cmd, v)
			if err != nil {
				return err
			}

			dashboard := app.NewDashboardService(chart.NewBoxPlotRenderer(chart.DefaultConfig()),
				app.DashboardConfig{TopN: v.GetInt("top")})
			data, err := dashboard.Report(cmd.Context(), sess)
			if err != nil {
				return err
			}

			content := report.HTML(data)
			if strings.EqualFold(filepath.Ext(out), ".md") {
				content = report.Markdown(data)
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote report to %s\n", out)

			if chartPath := v.GetString("chart"); chartPath != "" {
				format := ports.ChartSVG
				if strings.EqualFold(filepath.Ext(chartPath), ".png") {
					format = ports.ChartPNG
				}
				img, err := dashboard.Chart(cmd.Context(), sess, format)
				if err != nil {
					return err
				}
				if err := os.WriteFile(chartPath, img, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", chartPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote chart to %s\n", chartPath)
			}
			return nil
		},
	}
	addDataFlags(cmd)
	cmd.Flags().String("out", "", "Report file (.html or .md)")
	cmd.Flags().String("chart", "", "Optional boxplot file (.svg or .png)")
	cmd.Flags().Int("top", 5, "Number of ranked rows in the report")
	return cmd
}

func renderSummaries(w io.Writer, column string, rows []dataset.GroupSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", column, "Count", "Mean", "Median", "Std", "Min", "Max"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, s := range rows {
		table.Append([]string{
			strconv.Itoa(s.Rank),
			s.Group,
			report.FormatCount(s.Count),
			report.FormatNumber(s.Mean),
			report.FormatNumber(s.Median),
			report.FormatNumber(s.Std),
			report.FormatNumber(s.Min),
			report.FormatNumber(s.Max),
		})
	}
	table.Render()
}

func role(schema *dataset.Schema, col dataset.Column) string {
	switch {
	case col.Name == schema.GeoColumn:
		return "geographic"
	case col.Name == schema.RegionColumn:
		return "region"
	case schema.IsMetric(col.Name):
		return "metric"
	}
	return ""
}
