package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/pitch.report/internal/api"
	"github.com/banshee-data/pitch.report/internal/config"
	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/ingest"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/store"
	"github.com/banshee-data/pitch.report/internal/version"
)

const defaultDBFile = "pitch.db"

// httpClient fetches remote CSV files for import -url.
var httpClient httputil.HTTPClient = http.DefaultClient

func main() {
	flag.Usage = func() { printUsage(os.Stdout) }
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("pitchreport %s: %v", flag.Arg(0), err)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "serve":
		return handleServe(args)
	case "import":
		return handleImport(args, out)
	case "migrate":
		return handleMigrate(args)
	case "render":
		return handleRender(args, out)
	case "version":
		fmt.Fprintln(out, version.String())
		return nil
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pitchreport - pitch trajectories, location heatmaps and velocity charts

Usage: pitchreport <command> [options]

Commands:
  serve      Serve the HTTP API and charts
  import     Load a Statcast CSV export into a matchup
  render     Write a chart or plot for a matchup to a file
  migrate    Manage database schema migrations
  version    Show version information
  help       Show this help message

Examples:
  pitchreport import -file outing.csv -pitcher Skenes -batter Judge
  pitchreport render -matchup <id> -kind heatmap -types FF,SL -out heat.png
  pitchreport serve -listen :8080 -config config/analytics.defaults.json
`)
}

func loadConfig(path string) (*config.AnalyticsConfig, error) {
	if path == "" {
		return config.DefaultAnalyticsConfig(), nil
	}
	return config.LoadAnalyticsConfig(path)
}

func handleServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	listen := fs.String("listen", ":8080", "Listen address")
	cfgPath := fs.String("config", "", "Analytics config JSON (defaults when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	db, err := store.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	srv, err := api.NewServer(db, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log.Printf("%s serving %s", version.String(), *dbPath)
	return srv.ListenAndServe(ctx, *listen)
}

func handleImport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	file := fs.String("file", "", "CSV file to import")
	url := fs.String("url", "", "CSV URL to download and import")
	pitcher := fs.String("pitcher", "", "Pitcher name for a new matchup")
	batter := fs.String("batter", "", "Batter name for a new matchup")
	matchupID := fs.String("matchup", "", "Append to this matchup instead of creating one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*file == "") == (*url == "") {
		return errors.New("exactly one of -file or -url is required")
	}

	var (
		recs  []pitch.PitchRecord
		stats ingest.Stats
		err   error
	)
	if *file != "" {
		recs, stats, err = ingest.ReadFile(*file)
	} else {
		var body []byte
		body, err = httputil.Download(context.Background(), httpClient, *url, httputil.MaxDownloadBytes)
		if err == nil {
			recs, stats, err = ingest.Read(bytes.NewReader(body))
		}
	}
	if err != nil {
		return err
	}

	db, err := store.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	id := *matchupID
	if id == "" {
		m, err := db.CreateMatchup(ctx, *pitcher, *batter)
		if err != nil {
			return err
		}
		id = m.ID
	}
	v, err := db.AppendPitches(ctx, id, recs)
	if err != nil {
		return err
	}
	log.Printf("imported %d pitches into matchup %s (version %d, %d missing values)", stats.Rows, id, v, stats.MissingVals)
	fmt.Fprintln(out, id)
	return nil
}

func handleMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return store.RunMigrateCommand(fs.Args(), *dbPath)
}
