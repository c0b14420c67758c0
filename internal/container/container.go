package container

import (
	"fmt"

	"gostatcheck/adapters/excel"
	"gostatcheck/adapters/report"
	"gostatcheck/adapters/stats/classic"
	"gostatcheck/app"
	"gostatcheck/internal"
	"gostatcheck/internal/config"
	"gostatcheck/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Statistical collaborators
	NormalityTester    ports.NormalityTester
	VarianceTester     ports.VarianceTester
	CollinearityScorer ports.CollinearityScorer

	// Services
	Assumptions *app.AssumptionService

	// Output
	ReportWriter *excel.ReportWriter
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config:             cfg,
		Logger:             logger,
		NormalityTester:    classic.NewShapiroWilkTest(),
		VarianceTester:     classic.NewLeveneTest(),
		CollinearityScorer: classic.NewVIFScorer(),
		ReportWriter:       excel.NewReportWriter(logger),
	}
	c.Assumptions = app.NewAssumptionService(c.NormalityTester, c.VarianceTester, c.CollinearityScorer, logger)

	logger.Debug("Container initialized (normality=%s, variance=%s, collinearity=%s)",
		c.NormalityTester.Name(), c.VarianceTester.Name(), c.CollinearityScorer.Name())
	return c, nil
}

// DataReader returns a reader for the configured input file and sheet
func (c *Container) DataReader() *excel.DataReader {
	cfg := excel.DefaultExcelConfig()
	cfg.FilePath = c.Config.Input.File
	if c.Config.Input.Sheet != "" {
		cfg.Sheet = c.Config.Input.Sheet
	}
	return excel.NewDataReader(cfg, c.Logger)
}

// Renderer returns the renderer for the configured output format
func (c *Container) Renderer() (report.Renderer, error) {
	return report.New(c.Config.Output.Format)
}
