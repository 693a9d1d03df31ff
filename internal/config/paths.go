package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved directories used by the pipeline for input data,
// exported standings, and logs.
type Paths struct {
	DataDir   string
	OutputDir string
	LogsDir   string
}

// ResolvePaths builds a Paths from the configured directories, resolving
// relative paths against the current working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	resolve := func(dir string) (string, error) {
		if filepath.IsAbs(dir) {
			return dir, nil
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q: %w", dir, err)
		}
		return abs, nil
	}

	dataDir, err := resolve(c.Paths.DataDir)
	if err != nil {
		return nil, err
	}
	outputDir, err := resolve(c.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	logsDir, err := resolve(c.Paths.LogsDir)
	if err != nil {
		return nil, err
	}

	return &Paths{
		DataDir:   dataDir,
		OutputDir: outputDir,
		LogsDir:   logsDir,
	}, nil
}

// EnsureDirectories creates the output and logs directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetOutputPath returns the full path for an exported file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
