// Package docprep converts semi-structured source documents into clean,
// structured, retrieval-ready text artifacts. It handles three input
// classes: diagram interchange XML carrying an entity model, paginated
// regulatory text with running headers and embedded glossaries, and
// catalogue workbook exports. Each job yields a set of markdown sections,
// optionally routed to per-section target collections for a downstream
// indexer.
package docprep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/dmorley/docprep/catalog"
	"github.com/dmorley/docprep/compose"
	"github.com/dmorley/docprep/diagram"
	"github.com/dmorley/docprep/glossary"
	"github.com/dmorley/docprep/inventory"
	"github.com/dmorley/docprep/pagetext"
	"github.com/dmorley/docprep/reader"
)

// DocumentKind selects the processing path for a job.
type DocumentKind string

const (
	// KindDiagram is a diagram interchange XML export.
	KindDiagram DocumentKind = "diagram"
	// KindRegulatory is a paginated regulatory or reference document.
	KindRegulatory DocumentKind = "regulatory"
	// KindInventory is a catalogue workbook export.
	KindInventory DocumentKind = "inventory"
)

// Artifact is one written output file.
type Artifact struct {
	SectionKey       string `json:"section_key"`
	Path             string `json:"path"`
	TargetCollection string `json:"target_collection,omitempty"`
}

// Report summarizes one job run.
type Report struct {
	RunID     string       `json:"run_id"`
	Job       string       `json:"job"`
	Input     string       `json:"input"`
	Kind      DocumentKind `json:"kind"`
	Skipped   bool         `json:"skipped"`
	Artifacts []Artifact   `json:"artifacts,omitempty"`
	Err       error        `json:"-"`
}

// Pipeline runs jobs against a shared output directory and run catalog.
type Pipeline struct {
	cfg Config
	cat *catalog.Catalog
}

// New creates a Pipeline. The output directory is created if absent; the
// run catalog is opened unless Config.CatalogPath is empty.
func New(cfg Config) (*Pipeline, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultConfig().OutputDir
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	p := &Pipeline{cfg: cfg}
	if cfg.CatalogPath != "" {
		cat, err := catalog.Open(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("opening run catalog: %w", err)
		}
		p.cat = cat
	}
	return p, nil
}

// Close releases the run catalog.
func (p *Pipeline) Close() error {
	if p.cat == nil {
		return nil
	}
	return p.cat.Close()
}

// Catalog exposes the run catalog, or nil when disabled.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.cat
}

// Run processes one job: read, extract, compose, write, record. An input
// whose hash matches its last successful run is skipped.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID: ulid.Make().String(),
		Job:   job.Name,
		Input: job.Input,
		Kind:  job.Kind,
	}
	slog.Info("run: starting job",
		"run_id", report.RunID, "job", job.Name, "kind", job.Kind, "input", job.Input)

	hash, err := catalog.FileHash(job.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	var inputID int64
	if p.cat != nil {
		unchanged, err := p.cat.Unchanged(ctx, job.Input, job.collectionKey(), hash)
		if err != nil {
			return nil, fmt.Errorf("checking run catalog: %w", err)
		}
		if unchanged {
			slog.Info("run: input unchanged, skipping",
				"job", job.Name, "input", job.Input)
			report.Skipped = true
			return report, nil
		}
		inputID, err = p.cat.UpsertInput(ctx, catalog.Input{
			Path:        job.Input,
			Collection:  job.collectionKey(),
			Kind:        string(job.Kind),
			ContentHash: hash,
			Status:      "pending",
		})
		if err != nil {
			return nil, fmt.Errorf("registering input: %w", err)
		}
	}

	sections, err := p.extract(job)
	if err != nil {
		if p.cat != nil {
			if serr := p.cat.UpdateInputStatus(ctx, inputID, "failed"); serr != nil {
				slog.Warn("run: recording failure status failed", "error", serr)
			}
		}
		return nil, err
	}

	artifacts, hashes, err := p.writeSections(job, sections)
	if err != nil {
		return nil, err
	}
	report.Artifacts = artifacts

	if p.cat != nil {
		rows := make([]catalog.Artifact, len(artifacts))
		for i, a := range artifacts {
			rows[i] = catalog.Artifact{
				SectionKey:       a.SectionKey,
				TargetCollection: a.TargetCollection,
				Path:             a.Path,
				ContentHash:      hashes[i],
				SizeBytes:        int64(len(sections[i].Content)),
			}
		}
		if err := p.cat.RecordArtifacts(ctx, inputID, rows); err != nil {
			return nil, fmt.Errorf("recording artifacts: %w", err)
		}
		if err := p.cat.UpdateInputStatus(ctx, inputID, "done"); err != nil {
			return nil, fmt.Errorf("updating input status: %w", err)
		}
	}

	slog.Info("run: job complete",
		"run_id", report.RunID, "job", job.Name, "artifacts", len(artifacts))
	return report, nil
}

// RunBatch processes jobs in order with per-job isolation: a failing job is
// reported and the batch continues.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []Job) []Report {
	reports := make([]Report, 0, len(jobs))
	for _, job := range jobs {
		if ctx.Err() != nil {
			reports = append(reports, Report{Job: job.Name, Input: job.Input, Err: ctx.Err()})
			continue
		}
		r, err := p.Run(ctx, job)
		if err != nil {
			slog.Error("run: job failed", "job", job.Name, "error", err)
			reports = append(reports, Report{Job: job.Name, Input: job.Input, Kind: job.Kind, Err: err})
			continue
		}
		reports = append(reports, *r)
	}
	return reports
}

// extract dispatches on document kind and returns the rendered sections.
func (p *Pipeline) extract(job Job) ([]compose.Section, error) {
	switch job.Kind {
	case KindDiagram:
		data, err := reader.DiagramXML(job.Input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		model, err := diagram.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDiagram, err)
		}
		return compose.Compose(model, compose.Options{
			ModelName:     job.ModelName,
			SourceName:    filepath.Base(job.Input),
			RoutingPrefix: job.CollectionPrefix,
		}), nil

	case KindRegulatory:
		pages, err := reader.Pages(job.Input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		stripped := pagetext.Strip(pages)
		defs := glossary.Extract(pages, glossary.Options{
			ExplicitRanges:   job.glossaryRanges(),
			DensityThreshold: job.DensityThreshold,
		})
		sections := []compose.Section{{
			Key:              "document",
			Content:          stripped.Text,
			TargetCollection: job.Collection,
		}}
		if rendered := glossary.Render(defs); rendered != "" {
			sections = append(sections, compose.Section{
				Key:              "glossary",
				Content:          rendered,
				TargetCollection: job.Collection,
			})
		}
		return sections, nil

	case KindInventory:
		records, err := inventory.Read(job.Input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		return inventory.Compose(records, inventory.Options{
			InventoryName: job.ModelName,
			RoutingPrefix: job.CollectionPrefix,
		}), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
	}
}

// writeSections writes each section to "{job name}_{key}.md" in the output
// directory, returning the artifacts and their content hashes.
func (p *Pipeline) writeSections(job Job, sections []compose.Section) ([]Artifact, []string, error) {
	artifacts := make([]Artifact, 0, len(sections))
	hashes := make([]string, 0, len(sections))
	for _, s := range sections {
		path := filepath.Join(p.cfg.OutputDir, job.Name+"_"+s.Key+".md")
		if err := os.WriteFile(path, []byte(s.Content), 0o644); err != nil {
			return nil, nil, fmt.Errorf("%w: section %q: %v", ErrWriteFailed, s.Key, err)
		}
		artifacts = append(artifacts, Artifact{
			SectionKey:       s.Key,
			Path:             path,
			TargetCollection: s.TargetCollection,
		})
		hashes = append(hashes, catalog.ContentHash([]byte(s.Content)))
	}
	return artifacts, hashes, nil
}

// collectionKey namespaces the input row in the run catalog.
func (j Job) collectionKey() string {
	if j.CollectionPrefix != "" {
		return j.CollectionPrefix
	}
	return j.Collection
}
