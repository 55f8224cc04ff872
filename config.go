package docprep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmorley/docprep/glossary"
)

// Config holds pipeline-level settings shared by all jobs.
type Config struct {
	// OutputDir is where rendered section files are written.
	// Defaults to "out".
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// CatalogPath is the SQLite run-catalog location. Empty disables the
	// catalog, so every run reprocesses every input.
	CatalogPath string `json:"catalog_path" yaml:"catalog_path"`
}

// DefaultConfig returns a Config with sensible defaults: output in ./out,
// catalog alongside it.
func DefaultConfig() Config {
	return Config{
		OutputDir:   "out",
		CatalogPath: "out/docprep.db",
	}
}

// Job describes one input document and how to process it.
type Job struct {
	// Name identifies the job in logs, file names, and the CLI.
	Name string `yaml:"name"`

	// Input is the source file path.
	Input string `yaml:"input"`

	// Kind selects the processing path.
	Kind DocumentKind `yaml:"kind"`

	// CollectionPrefix routes diagram and inventory sections to
	// "{prefix}_{section key}" collections. Empty disables routing.
	CollectionPrefix string `yaml:"collection_prefix"`

	// Collection is the single target collection for regulatory output.
	Collection string `yaml:"collection"`

	// ModelName appears in rendered prose for diagram jobs.
	ModelName string `yaml:"model_name"`

	// DefinitionRanges are 0-based, end-exclusive page ranges always
	// scanned for glossary terms (regulatory jobs only).
	DefinitionRanges []PageRange `yaml:"definition_ranges"`

	// DensityThreshold is the per-page trigger-phrase count at which a
	// page is auto-scanned for definitions. Zero disables auto-detection.
	DensityThreshold int `yaml:"density_threshold"`
}

// PageRange is a YAML-friendly page index range.
type PageRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Validate checks the fields every job needs before it can run.
func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("%w: job name is required", ErrInvalidConfig)
	}
	if j.Input == "" {
		return fmt.Errorf("%w: job %q has no input", ErrInvalidConfig, j.Name)
	}
	switch j.Kind {
	case KindDiagram, KindRegulatory, KindInventory:
		return nil
	default:
		return fmt.Errorf("%w: job %q kind %q", ErrUnknownKind, j.Name, j.Kind)
	}
}

func (j Job) glossaryRanges() []glossary.Range {
	ranges := make([]glossary.Range, 0, len(j.DefinitionRanges))
	for _, r := range j.DefinitionRanges {
		ranges = append(ranges, glossary.Range{Start: r.Start, End: r.End})
	}
	return ranges
}

// jobFile is the on-disk YAML layout.
type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads and validates a YAML job file.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing job file: %v", ErrInvalidConfig, err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("%w: job file %q defines no jobs", ErrInvalidConfig, path)
	}
	for _, j := range f.Jobs {
		if err := j.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Jobs, nil
}
