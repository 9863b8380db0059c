package container

import (
	"context"
	"fmt"
	"log"

	"solardash/adapters/chart"
	"solardash/adapters/db"
	"solardash/app"
	"solardash/domain/dataset"
	"solardash/internal"
	"solardash/internal/config"
	internalDataset "solardash/internal/dataset"
	"solardash/internal/migration"
	"solardash/internal/session"
	"solardash/internal/testkit"
	"solardash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Migrator migration.Migrator
	Storage  internalDataset.FileStorage

	// Repositories (data access layer)
	Catalog ports.DatasetCatalog

	// Data
	Loader         *internalDataset.Loader
	TestKit        *testkit.TestKit
	DefaultDataset *dataset.Dataset

	// Presentation
	Renderer ports.ChartRenderer

	// Services
	Sessions  *session.Manager
	Datasets  *app.DatasetService
	Dashboard *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Logger:   internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Migrator: migration.NewRunner(),
	}

	loaderConfig := internalDataset.DefaultLoaderConfig()
	loaderConfig.GeoColumn = cfg.Data.GeoColumn
	loaderConfig.RegionColumn = cfg.Data.RegionColumn
	if len(cfg.Data.Metrics) > 0 {
		loaderConfig.PreferredMetrics = cfg.Data.Metrics
	}
	c.Loader = internalDataset.NewLoader(loaderConfig)
	c.TestKit = testkit.NewTestKit(c.Loader)
	c.Renderer = chart.NewBoxPlotRenderer(chart.DefaultConfig())

	if cfg.Data.UploadDir != "" {
		storageConfig := internalDataset.DefaultStorageConfig()
		storageConfig.BasePath = cfg.Data.UploadDir
		c.Storage = internalDataset.NewLocalFileStorage(storageConfig)
		c.Logger.Debug("[Container] Upload copies kept in %s", cfg.Data.UploadDir)
	}

	return c, nil
}

// InitWithDatabase opens the catalog database and applies migrations.
// It is a no-op when DATABASE_URL is unset.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Info("[Container] DATABASE_URL not set, dataset catalog disabled")
		return nil
	}

	conn, err := db.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := c.Migrator.Run(ctx, conn); err != nil {
		conn.Close()
		return fmt.Errorf("catalog migration failed: %w", err)
	}

	c.Logger.Debug("[Container] Catalog schema version %s", c.Migrator.Version())
	c.DB = conn
	c.Catalog = db.NewCatalogRepository(conn)
	return nil
}

// InitServices loads the default dataset and builds the session manager and services
func (c *Container) InitServices(ctx context.Context) error {
	c.Datasets = app.NewDatasetService(c.Loader, c.Storage, c.Catalog, c.Config.Data.DefaultMetric, c.Config.Data.DefaultSelectionSize)
	c.Dashboard = app.NewDashboardService(c.Renderer, app.DashboardConfig{TopN: c.Config.Data.TopN})

	ds, err := c.TestKit.DefaultDataset(ctx, c.Config.Data.Path)
	if err != nil {
		return fmt.Errorf("failed to load default dataset: %w", err)
	}
	c.DefaultDataset = ds
	c.Datasets.Register(ctx, ds)

	c.Sessions = session.NewManager(c.Config.Session.TTL, c.sessionDefaults)

	log.Printf("[Container] Default dataset %s: %d rows, geo column %q, metrics %v",
		ds.Name, ds.Len(), ds.Schema.GeoColumn, ds.Schema.Metrics)
	return nil
}

func (c *Container) sessionDefaults() (*dataset.Dataset, dataset.Selection) {
	return c.DefaultDataset, c.Datasets.DefaultSelection(c.DefaultDataset)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
