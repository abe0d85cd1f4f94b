package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/pitch.report/internal/chart"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/security"
	"github.com/banshee-data/pitch.report/internal/store"
)

// Render kinds. Heatmap and trajectory produce PNG, the rest HTML.
const (
	kindHeatmap     = "heatmap"
	kindHeatmapHTML = "heatmap-html"
	kindTrajectory  = "trajectory"
	kindVelocity    = "velocity"
	kindMovement    = "movement"
)

type renderOptions struct {
	matchup        string
	kind           string
	types          string
	typesSet       bool
	cellSize       float64
	intervals      int
	view           string
	representative bool
}

func handleRender(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	cfgPath := fs.String("config", "", "Analytics config JSON (defaults when empty)")
	outPath := fs.String("out", "", "Output file (stdout when empty)")
	outDir := fs.String("dir", "", "Write to a file named after the matchup in this directory")
	var opts renderOptions
	fs.StringVar(&opts.matchup, "matchup", "", "Matchup ID (required)")
	fs.StringVar(&opts.kind, "kind", kindHeatmap, "heatmap, heatmap-html, trajectory, velocity or movement")
	fs.StringVar(&opts.types, "types", "", "Comma separated pitch types (all when omitted)")
	fs.Float64Var(&opts.cellSize, "cell-size", 0, "Heatmap cell size in feet (config value when zero)")
	fs.IntVar(&opts.intervals, "intervals", 0, "Trajectory sample intervals (config value when zero)")
	fs.StringVar(&opts.view, "view", string(chart.SideView), "Trajectory view: side or top")
	fs.BoolVar(&opts.representative, "representative", false, "Plot one mean trajectory per pitch type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "types" {
			opts.typesSet = true
		}
	})
	if opts.matchup == "" {
		return errors.New("-matchup is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if opts.cellSize == 0 {
		opts.cellSize = cfg.GetCellSize()
	}
	if opts.intervals == 0 {
		opts.intervals = cfg.GetTrajectoryIntervals()
	}

	db, err := store.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	m, err := db.Matchup(ctx, opts.matchup)
	if err != nil {
		return err
	}
	recs, err := db.Pitches(ctx, m.ID)
	if err != nil {
		return err
	}

	spec := cfg.GridSpec()
	spec.CellSize = opts.cellSize
	b, err := render(ctx, m, recs, spec, opts)
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" && *outDir != "" {
		path = filepath.Join(*outDir, security.OutputName(extension(opts.kind), m.Pitcher, m.Batter, opts.kind))
	}
	if path == "" {
		_, err = out.Write(b)
		return err
	}
	if err := security.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}

func extension(kind string) string {
	if kind == kindHeatmap || kind == kindTrajectory {
		return "png"
	}
	return "html"
}

func render(ctx context.Context, m *store.Matchup, recs []pitch.PitchRecord, spec pitch.GridSpec, opts renderOptions) ([]byte, error) {
	active := pitch.NewCategorySet(pitch.Categories(recs)...)
	if opts.typesSet {
		active = pitch.ParseCategorySet(opts.types)
	}
	var selected []pitch.PitchRecord
	for _, r := range recs {
		if active.Contains(r.CategoryOrUnknown()) {
			selected = append(selected, r)
		}
	}
	title := matchupTitle(m)

	switch opts.kind {
	case kindHeatmap:
		return chart.HeatmapPNG(pitch.BuildSpatialGridSpec(recs, active, spec), title)
	case kindHeatmapHTML:
		g := pitch.BuildSpatialGridSpec(recs, active, spec)
		return chart.RenderPage(title, chart.HeatmapChart(g, active.Key()))
	case kindVelocity:
		h := pitch.BuildVelocityHistogram(selected)
		return chart.RenderPage(title, chart.VelocityChart(h, fmt.Sprintf("%d pitches", h.Total())))
	case kindMovement:
		return chart.RenderPage(title, chart.MovementChart(pitch.BuildMovementScatter(selected), active.Key()))
	case kindTrajectory:
		view, err := chart.ParseView(opts.view)
		if err != nil {
			return nil, err
		}
		if opts.representative {
			arsenal := pitch.BuildArsenal(selected)
			selected = make([]pitch.PitchRecord, len(arsenal))
			for i, e := range arsenal {
				selected[i] = e.Representative()
			}
		}
		trs, err := pitch.ComputeTrajectories(ctx, selected, opts.intervals)
		if err != nil {
			return nil, err
		}
		return chart.TrajectoryPNG(trs, view, title)
	default:
		return nil, fmt.Errorf("unknown render kind %q", opts.kind)
	}
}

func matchupTitle(m *store.Matchup) string {
	if m.Pitcher != "" && m.Batter != "" {
		return m.Pitcher + " vs " + m.Batter
	}
	if m.Pitcher != "" {
		return m.Pitcher
	}
	return "Matchup " + m.ID
}
