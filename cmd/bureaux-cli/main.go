package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
	"github.com/jalad-shrimali/bureaux-filter/sheet"
	"github.com/jalad-shrimali/bureaux-filter/store"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type cliOptions struct {
	inputPath  string
	cities     listFlag
	categories listFlag
	mode       string
	outputPath string
	dbPath     string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("bureaux-cli: %v", err)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("bureaux-cli: %v", err)
	}
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("bureaux-cli", flag.ContinueOnError)
	fs.StringVar(&opts.inputPath, "input", "", "Workbook (.xlsx) to load; the first sheet is used")
	fs.Var(&opts.cities, "city", "City to keep (repeatable)")
	fs.Var(&opts.categories, "category", "Category code to match (repeatable)")
	fs.StringVar(&opts.mode, "mode", string(bureau.Subset), "Category match mode: avec-autres or exact")
	fs.StringVar(&opts.outputPath, "out", "", "Write the visible records to this .xlsx file")
	fs.StringVar(&opts.dbPath, "db", "", "Store a snapshot of the loaded records in this SQLite file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s -input FILE.xlsx [-city X]... [-category D]... [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.inputPath = strings.TrimSpace(opts.inputPath)
	if opts.inputPath == "" {
		fs.Usage()
		return opts, errors.New("missing required -input file")
	}
	if _, err := bureau.ParseMatchMode(opts.mode); err != nil {
		return opts, fmt.Errorf("-mode %q: %w", opts.mode, err)
	}
	return opts, nil
}

func run(ctx context.Context, opts cliOptions, stdout io.Writer) error {
	rows, err := sheet.ReadFile(opts.inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.inputPath, err)
	}
	ds := bureau.NewDataset(filepath.Base(opts.inputPath), rows)

	if opts.dbPath != "" {
		snaps, err := store.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer snaps.Close()
		if err := snaps.Save(ctx, ds); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Fprintf(stdout, "snapshot %s written to %s\n", ds.ID, opts.dbPath)
	}

	st := bureau.NewFilterState()
	st.Mode, _ = bureau.ParseMatchMode(opts.mode)
	st.Cities = bureau.NewSelection(opts.cities...)
	st.Categories = bureau.NewSelection(opts.categories...)
	v := ds.View(st)

	fmt.Fprintf(stdout, "%d entrées chargées\n", v.Total)
	fmt.Fprintf(stdout, "Villes: %s\n", strings.Join(v.CityOptions, ", "))
	fmt.Fprintf(stdout, "Catégories D: %s\n", strings.Join(v.CategoryOptions, ", "))
	fmt.Fprintf(stdout, "%d visibles (mode %s)\n", len(v.Visible), v.Mode)
	if v.NoResults {
		fmt.Fprintln(stdout, "Aucun résultat trouvé")
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(sheet.ReportHeader, "\t"))
	for _, r := range v.Visible {
		fmt.Fprintln(tw, strings.Join([]string{r.Title, r.Location, r.City, r.Phone, r.Fax, r.CategoryRaw, r.Identifier}, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.outputPath != "" {
		if err := sheet.WriteReportFile(opts.outputPath, v.Visible); err != nil {
			return fmt.Errorf("write %s: %w", opts.outputPath, err)
		}
		fmt.Fprintf(stdout, "report written to %s\n", opts.outputPath)
	}
	return nil
}
