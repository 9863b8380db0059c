package testkit

import (
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"solardash/adapters/tabular"
	"solardash/domain/dataset"
	internalDataset "solardash/internal/dataset"
)

// Site is one measurement station
type Site struct {
	Country string  `json:"country"`
	Region  string  `json:"region"`
	PeakGHI float64 `json:"peak_ghi"` // clear-sky noon irradiance, W/m²
	MeanTmp float64 `json:"mean_tmp"` // °C
}

// SolarGeneratorConfig configures the solar data generator
type SolarGeneratorConfig struct {
	Sites          []Site        `json:"sites"`
	RecordsPerSite int           `json:"records_per_site"`
	StartDate      time.Time     `json:"start_date"`
	Interval       time.Duration `json:"interval"`
	MissingRate    float64       `json:"missing_rate"` // share of GHI/DNI/DHI cells left blank
	Seed           int64         `json:"seed"`
}

// SolarHeaders is the column layout of generated data
var SolarHeaders = []string{"Timestamp", "country", "region", "GHI", "DNI", "DHI", "Tamb", "RH", "WS"}

// DefaultSolarConfig returns stations in Benin, Sierra Leone and Togo
func DefaultSolarConfig() SolarGeneratorConfig {
	return SolarGeneratorConfig{
		Sites: []Site{
			{Country: "Benin", Region: "Malanville", PeakGHI: 1050, MeanTmp: 28.5},
			{Country: "Sierra Leone", Region: "Bumbuna", PeakGHI: 880, MeanTmp: 25.0},
			{Country: "Togo", Region: "Dapaong", PeakGHI: 980, MeanTmp: 27.0},
		},
		RecordsPerSite: 240,
		StartDate:      time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Seed:           42,
	}
}

// SolarGenerator produces deterministic irradiance records
type SolarGenerator struct {
	config SolarGeneratorConfig
}

// NewSolarGenerator creates a generator; zero fields take their defaults
func NewSolarGenerator(config SolarGeneratorConfig) *SolarGenerator {
	def := DefaultSolarConfig()
	if len(config.Sites) == 0 {
		config.Sites = def.Sites
	}
	if config.RecordsPerSite <= 0 {
		config.RecordsPerSite = def.RecordsPerSite
	}
	if config.StartDate.IsZero() {
		config.StartDate = def.StartDate
	}
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	return &SolarGenerator{config: config}
}

// Table generates raw rows, site by site. The same config always yields the same table.
func (g *SolarGenerator) Table() *tabular.Table {
	rng := rand.New(rand.NewSource(g.config.Seed))
	table := &tabular.Table{
		Headers:   append([]string(nil), SolarHeaders...),
		Rows:      make([][]string, 0, len(g.config.Sites)*g.config.RecordsPerSite),
		Delimiter: ',',
	}

	for _, site := range g.config.Sites {
		for i := 0; i < g.config.RecordsPerSite; i++ {
			ts := g.config.StartDate.Add(time.Duration(i) * g.config.Interval)
			table.Rows = append(table.Rows, g.record(rng, site, ts))
		}
	}
	return table
}

func (g *SolarGenerator) record(rng *rand.Rand, site Site, ts time.Time) []string {
	hour := float64(ts.Hour()) + float64(ts.Minute())/60
	daylight := math.Max(0, math.Sin(math.Pi*(hour-6)/12))
	cloud := 0.6 + 0.4*rng.Float64()

	ghi := site.PeakGHI * daylight * cloud
	dni := ghi * (0.55 + 0.25*rng.Float64())
	dhi := math.Max(0, ghi-dni*0.8)
	tamb := site.MeanTmp + 4*daylight + rng.NormFloat64()
	rh := math.Min(100, math.Max(10, 85-35*daylight+rng.NormFloat64()*5))
	ws := math.Abs(2 + rng.NormFloat64()*1.2)

	return []string{
		ts.Format("2006-01-02 15:04"),
		site.Country,
		site.Region,
		g.maybeMissing(rng, ghi),
		g.maybeMissing(rng, dni),
		g.maybeMissing(rng, dhi),
		format(tamb),
		format(rh),
		format(ws),
	}
}

func (g *SolarGenerator) maybeMissing(rng *rand.Rand, v float64) string {
	if g.config.MissingRate > 0 && rng.Float64() < g.config.MissingRate {
		return ""
	}
	return format(v)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Dataset types the generated table with the default loader settings
func (g *SolarGenerator) Dataset() *dataset.Dataset {
	ds, err := internalDataset.NewLoader(internalDataset.DefaultLoaderConfig()).
		LoadTable("synthetic-solar.csv", dataset.SourceSynthetic, g.Table())
	if err != nil {
		// the generated layout always has a geo column and metrics
		panic(err)
	}
	return ds
}

// WriteCSV writes the generated data to path
func (g *SolarGenerator) WriteCSV(path string) error {
	ds := g.Dataset()
	rows := make([]int, ds.Len())
	for i := range rows {
		rows[i] = i
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tabular.WriteCSV(f, dataset.NewFilteredView(ds, dataset.NewSelection(""), rows))
}
