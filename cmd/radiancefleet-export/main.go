// Command radiancefleet-export prints the evidence card or government-alert package for
// one gap, for an analyst to pull on demand rather than as a pipeline step.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/export"
	"github.com/radiancefleet/core/internal/store"
	"github.com/radiancefleet/core/internal/store/memstore"
	"github.com/radiancefleet/core/internal/store/supabasestore"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "evidence-card":
		cmdEvidenceCard(os.Args[2:])
	case "government-alert":
		cmdGovernmentAlert(os.Args[2:])
	case "version":
		fmt.Printf("radiancefleet-export v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`radiancefleet-export v` + version + `

Usage: radiancefleet-export <command> [flags]

Commands:
  evidence-card     Print a gap's evidence card
  government-alert  Print a gap's government-alert package (JSON only)
  version           Print version
  help              Show this help

Flags (evidence-card):
  -gap-id string    Gap ID to export (required)
  -format string    json, markdown, or csv (default "json")

Flags (government-alert):
  -gap-id string    Gap ID to export (required)

Examples:
  radiancefleet-export evidence-card -gap-id gap-123 -format markdown
  radiancefleet-export government-alert -gap-id gap-123`)
}

func cmdEvidenceCard(args []string) {
	fs := flag.NewFlagSet("evidence-card", flag.ExitOnError)
	gapID := fs.String("gap-id", "", "gap ID to export")
	format := fs.String("format", "json", "json, markdown, or csv")
	fs.Parse(args)

	if *gapID == "" {
		fmt.Fprintln(os.Stderr, "radiancefleet-export: -gap-id is required")
		os.Exit(1)
	}

	s, closeStore := mustOpenStore()
	defer closeStore()

	card, err := export.BuildEvidenceCard(context.Background(), s, *gapID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiancefleet-export: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		data, err := card.ToJSON()
		exitOnErr(err)
		fmt.Println(string(data))
	case "markdown":
		fmt.Println(card.ToMarkdown())
	case "csv":
		data, err := card.ToCSV()
		exitOnErr(err)
		fmt.Print(string(data))
	default:
		fmt.Fprintf(os.Stderr, "radiancefleet-export: unknown format %q\n", *format)
		os.Exit(1)
	}
}

func cmdGovernmentAlert(args []string) {
	fs := flag.NewFlagSet("government-alert", flag.ExitOnError)
	gapID := fs.String("gap-id", "", "gap ID to export")
	fs.Parse(args)

	if *gapID == "" {
		fmt.Fprintln(os.Stderr, "radiancefleet-export: -gap-id is required")
		os.Exit(1)
	}

	s, closeStore := mustOpenStore()
	defer closeStore()

	pkg, err := export.BuildGovernmentAlertPackage(context.Background(), s, *gapID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiancefleet-export: %v\n", err)
		os.Exit(1)
	}

	data, err := pkg.ToJSON()
	exitOnErr(err)
	fmt.Println(string(data))
}

func mustOpenStore() (store.Store, func()) {
	cfg := config.Get()
	if cfg.GetSupabaseURL() == "" || cfg.GetSupabaseKey() == "" {
		fmt.Fprintln(os.Stderr, "radiancefleet-export: Supabase not configured, using in-memory store (likely empty)")
		return memstore.New(), func() {}
	}
	client, err := supabasestore.New(cfg.GetSupabaseURL(), cfg.GetSupabaseKey())
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiancefleet-export: failed to initialize store: %v\n", err)
		os.Exit(1)
	}
	return client, func() {}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiancefleet-export: %v\n", err)
		os.Exit(1)
	}
}
