package testkit

import (
	"context"
	"errors"
	"log"
	"os"

	"solardash/domain/dataset"
	internalDataset "solardash/internal/dataset"
)

// TestKit provides the startup dataset and test fixtures
type TestKit struct {
	loader    *internalDataset.Loader
	generator *SolarGenerator
}

// NewTestKit creates a kit using loader for real files and the default generator otherwise
func NewTestKit(loader *internalDataset.Loader) *TestKit {
	return &TestKit{
		loader:    loader,
		generator: NewSolarGenerator(DefaultSolarConfig()),
	}
}

// DefaultDataset loads path, falling back to synthetic data when the file is not there.
// Any other load failure is returned.
func (t *TestKit) DefaultDataset(ctx context.Context, path string) (*dataset.Dataset, error) {
	if path == "" {
		log.Printf("[TestKit] No data file configured, using synthetic data")
		return t.generator.Dataset(), nil
	}

	ds, err := t.loader.LoadFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[TestKit] Data file %s not found, using synthetic data", path)
		return t.generator.Dataset(), nil
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Generator exposes the synthetic data generator
func (t *TestKit) Generator() *SolarGenerator {
	return t.generator
}
