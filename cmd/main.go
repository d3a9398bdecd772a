package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/draftedge/draftedge/internal/adapters/recorder"
	"github.com/draftedge/draftedge/internal/adapters/source"
	"github.com/draftedge/draftedge/internal/app"
	"github.com/draftedge/draftedge/internal/config"
	"github.com/draftedge/draftedge/internal/domain/model"
	"github.com/draftedge/draftedge/internal/poolgen"
	"github.com/draftedge/draftedge/pkg/logger"
	"github.com/draftedge/draftedge/pkg/metrics"
)

// topDisplayCount caps the valuation table printed to stdout.
const topDisplayCount = 25

func main() {
	playersPath := flag.String("players", "", "path to a JSON player pool")
	csvPath := flag.String("csv", "", "path to a CSV player pool")
	outPath := flag.String("out", "", "write the full snapshot as JSON to this path")
	dbPath := flag.String("db", "", "sqlite path for snapshot recording (overrides config)")
	synthetic := flag.Bool("synthetic", false, "run against a generated synthetic pool")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	pool, err := loadPool(*playersPath, *csvPath, *synthetic)
	if err != nil {
		log.Error(ctx, "failed to load player pool", logger.Error(err))
		os.Exit(1)
	}

	engine := app.New(cfg, app.WithLogger(log.Named("engine")))
	snap, err := engine.Run(ctx, pool)
	if err != nil {
		log.Error(ctx, "valuation run failed", logger.Error(err))
		os.Exit(1)
	}

	printSummary(snap)

	if *outPath != "" {
		if err := writeJSON(*outPath, snap); err != nil {
			log.Error(ctx, "failed to write snapshot", logger.String("path", *outPath), logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "snapshot written", logger.String("path", *outPath))
	}

	recordSnapshot(ctx, log, cfg, *dbPath, snap)
}

// loadPool resolves the pool from exactly one of the input modes.
func loadPool(playersPath, csvPath string, synthetic bool) ([]model.PlayerScoreInput, error) {
	switch {
	case synthetic:
		return poolgen.New(poolgen.WithMarketPrices(0.5)).Pool(), nil
	case playersPath != "":
		return source.LoadJSON(playersPath)
	case csvPath != "":
		return source.LoadCSV(csvPath)
	default:
		return nil, fmt.Errorf("one of --players, --csv or --synthetic is required")
	}
}

func printSummary(snap *model.Snapshot) {
	fmt.Printf("snapshot %s: %d players valued, %d excluded, factor %.4f (%d iterations)\n\n",
		snap.ID, len(snap.Valuations), len(snap.Excluded), snap.Factor, snap.Iterations)

	fmt.Printf("%-4s %-22s %-4s %-5s %-12s %6s %6s %6s %6s %6s\n",
		"#", "PLAYER", "POS", "RANK", "TIER", "VALUE", "MIN", "MAX", "MKT", "EDGE")
	for i, v := range snap.Valuations {
		if i >= topDisplayCount {
			break
		}
		fmt.Printf("%-4d %-22s %-4s %-5d %-12s %5d$ %5d$ %5d$ %5d$ %+5d$\n",
			i+1, v.Name, v.Position, v.PositionRank, v.Tier,
			v.IntrinsicValue, v.MinBid, v.MaxBid, v.MarketPrice, v.Edge)
	}

	fmt.Printf("\ninvariants: ")
	if snap.Report.Passed {
		fmt.Println("all passed")
	} else {
		fmt.Printf("%d failed\n", snap.Report.FailedCount())
	}
	names := make([]string, 0, len(snap.Report.Results))
	for name := range snap.Report.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := snap.Report.Results[name]
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %-22s %s\n", status, name, res.Message)
		for _, ce := range res.Counterexamples {
			fmt.Printf("         - %s\n", ce)
		}
	}

	for _, ex := range snap.Excluded {
		fmt.Printf("excluded: %s (%s): %s\n", ex.Input.ID, ex.Input.Name, ex.Reason)
	}
}

func writeJSON(path string, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// recordSnapshot persists the snapshot when a database is configured; a
// recorder failure is logged but never fails an already-published run.
func recordSnapshot(ctx context.Context, log logger.Logger, cfg *config.Config, dbPath string, snap *model.Snapshot) {
	path := cfg.SnapshotDB
	if dbPath != "" {
		path = dbPath
	}

	var rec recorder.Recorder = recorder.NewNoop()
	if path != "" {
		sq, err := recorder.NewSQLite(path)
		if err != nil {
			metrics.RecordRecorderError()
			log.Error(ctx, "failed to open snapshot db", logger.String("path", path), logger.Error(err))
			return
		}
		rec = sq
	}
	defer rec.Close() //nolint:errcheck // close error on a read-only exit path

	if err := rec.RecordSnapshot(ctx, snap); err != nil {
		metrics.RecordRecorderError()
		log.Error(ctx, "failed to record snapshot", logger.Error(err))
		return
	}
	if path != "" {
		metrics.RecordSnapshotRecorded()
		log.Info(ctx, "snapshot recorded", logger.String("path", path))
	}
}
