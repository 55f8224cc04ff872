// Command docprep runs the document preparation pipeline.
//
// Run every job in a YAML job file:
//
//	go run ./cmd/docprep run --jobs ./jobs.yaml --out ./out
//
// Run a single named job:
//
//	go run ./cmd/docprep run --jobs ./jobs.yaml --job handbook
//
// Inspect the run catalog:
//
//	go run ./cmd/docprep list
//	go run ./cmd/docprep status --input /data/model.xml --collection fa_cm
//	go run ./cmd/docprep delete --id 3
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dmorley/docprep"
	"github.com/dmorley/docprep/catalog"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "list":
		err = listCmd(os.Args[2:])
	case "status":
		err = statusCmd(os.Args[2:])
	case "delete":
		err = deleteCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: docprep <run|list|status|delete> [flags]")
}

func commonFlags(fs *flag.FlagSet) (outDir, catalogPath *string, verbose *bool) {
	outDir = fs.String("out", "out", "Output directory for section files")
	catalogPath = fs.String("catalog", "", "Run catalog SQLite path (default: <out>/docprep.db, empty string disables)")
	verbose = fs.Bool("v", false, "Enable debug logging")
	return
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newPipeline(outDir, catalogPath string, catalogSet bool) (*docprep.Pipeline, error) {
	cfg := docprep.Config{OutputDir: outDir, CatalogPath: catalogPath}
	if !catalogSet {
		cfg.CatalogPath = outDir + "/docprep.db"
	}
	return docprep.New(cfg)
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	outDir, catalogPath, verbose := commonFlags(fs)
	jobFile := fs.String("jobs", "jobs.yaml", "YAML job file")
	jobName := fs.String("job", "", "Run only the named job (default: all)")
	fs.Parse(args)
	setupLogging(*verbose)

	jobs, err := docprep.LoadJobs(*jobFile)
	if err != nil {
		return err
	}
	if *jobName != "" {
		var selected []docprep.Job
		for _, j := range jobs {
			if j.Name == *jobName {
				selected = append(selected, j)
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("%w: %q in %s", docprep.ErrJobNotFound, *jobName, *jobFile)
		}
		jobs = selected
	}

	p, err := newPipeline(*outDir, *catalogPath, flagSet(fs, "catalog"))
	if err != nil {
		return err
	}
	defer p.Close()

	reports := p.RunBatch(context.Background(), jobs)
	failed := 0
	for _, r := range reports {
		switch {
		case r.Err != nil:
			failed++
			fmt.Printf("FAIL  %-20s %v\n", r.Job, r.Err)
		case r.Skipped:
			fmt.Printf("SKIP  %-20s unchanged\n", r.Job)
		default:
			fmt.Printf("OK    %-20s %d artifacts\n", r.Job, len(r.Artifacts))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(reports))
	}
	return nil
}

func listCmd(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	outDir, catalogPath, verbose := commonFlags(fs)
	fs.Parse(args)
	setupLogging(*verbose)

	p, err := newPipeline(*outDir, *catalogPath, flagSet(fs, "catalog"))
	if err != nil {
		return err
	}
	defer p.Close()
	if p.Catalog() == nil {
		return fmt.Errorf("run catalog is disabled")
	}

	inputs, err := p.Catalog().ListInputs(context.Background())
	if err != nil {
		return err
	}
	for _, in := range inputs {
		fmt.Printf("%-4d %-10s %-8s %-24s %s\n", in.ID, in.Kind, in.Status, in.Collection, in.Path)
	}
	return nil
}

func statusCmd(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	outDir, catalogPath, verbose := commonFlags(fs)
	input := fs.String("input", "", "Input file path")
	collection := fs.String("collection", "", "Collection namespace the input was registered under")
	fs.Parse(args)
	setupLogging(*verbose)

	if *input == "" {
		return fmt.Errorf("--input is required")
	}

	p, err := newPipeline(*outDir, *catalogPath, flagSet(fs, "catalog"))
	if err != nil {
		return err
	}
	defer p.Close()
	if p.Catalog() == nil {
		return fmt.Errorf("run catalog is disabled")
	}

	ctx := context.Background()
	in, err := p.Catalog().GetInput(ctx, *input, *collection)
	if err != nil {
		return err
	}
	if in == nil {
		return fmt.Errorf("input not registered: %s", *input)
	}
	artifacts, err := p.Catalog().ListArtifacts(ctx, in.ID)
	if err != nil {
		return err
	}
	out := struct {
		Input     catalog.Input      `json:"input"`
		Artifacts []catalog.Artifact `json:"artifacts"`
	}{*in, artifacts}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func deleteCmd(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	outDir, catalogPath, verbose := commonFlags(fs)
	id := fs.Int64("id", 0, "Input id to delete (see list)")
	fs.Parse(args)
	setupLogging(*verbose)

	if *id == 0 {
		return fmt.Errorf("--id is required")
	}

	p, err := newPipeline(*outDir, *catalogPath, flagSet(fs, "catalog"))
	if err != nil {
		return err
	}
	defer p.Close()
	if p.Catalog() == nil {
		return fmt.Errorf("run catalog is disabled")
	}
	return p.Catalog().DeleteInput(context.Background(), *id)
}

// flagSet reports whether the named flag was supplied explicitly.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
