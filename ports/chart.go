package ports

import (
	"solardash/domain/dataset"
)

// Chart output formats
const (
	ChartSVG = "svg"
	ChartPNG = "png"
)

// ChartRenderer draws one box per group of the selected metric
type ChartRenderer interface {
	RenderBoxPlot(series []dataset.GroupSeries, metric, format string) ([]byte, error)
}
