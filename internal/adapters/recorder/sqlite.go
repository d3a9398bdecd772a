package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// SQLite persists snapshots, valuations and invariant results to an
// embedded database.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis reads don't block snapshot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLite{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

func (r *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id          TEXT PRIMARY KEY,
			created_at  INTEGER NOT NULL,
			factor      REAL NOT NULL,
			iterations  INTEGER NOT NULL,
			players     INTEGER NOT NULL,
			excluded    INTEGER NOT NULL,
			passed      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,

		`CREATE TABLE IF NOT EXISTS valuations (
			snapshot_id      TEXT NOT NULL,
			player_id        TEXT NOT NULL,
			name             TEXT,
			position         TEXT NOT NULL,
			team             TEXT,
			projected_points REAL NOT NULL,
			vorp             REAL NOT NULL,
			position_rank    INTEGER NOT NULL,
			tier             TEXT NOT NULL,
			base_value       REAL NOT NULL,
			adjusted_value   REAL NOT NULL,
			intrinsic_value  INTEGER NOT NULL,
			target_bid       INTEGER NOT NULL,
			min_bid          INTEGER NOT NULL,
			max_bid          INTEGER NOT NULL,
			market_price     INTEGER NOT NULL,
			edge             INTEGER NOT NULL,
			confidence       REAL NOT NULL,
			PRIMARY KEY (snapshot_id, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_snapshot ON valuations(snapshot_id)`,

		`CREATE TABLE IF NOT EXISTS invariants (
			snapshot_id     TEXT NOT NULL,
			name            TEXT NOT NULL,
			passed          INTEGER NOT NULL,
			message         TEXT,
			counterexamples TEXT,
			PRIMARY KEY (snapshot_id, name)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot writes the whole snapshot in one transaction so a
// half-written run never appears in the database.
func (r *SQLite) RecordSnapshot(ctx context.Context, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `INSERT INTO snapshots
		(id, created_at, factor, iterations, players, excluded, passed)
		VALUES (?,?,?,?,?,?,?)`,
		snap.ID, snap.CreatedAt.Unix(), snap.Factor, snap.Iterations,
		len(snap.Valuations), len(snap.Excluded), boolToInt(snap.Report.Passed),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for _, v := range snap.Valuations {
		_, err = tx.ExecContext(ctx, `INSERT INTO valuations
			(snapshot_id, player_id, name, position, team, projected_points,
			 vorp, position_rank, tier, base_value, adjusted_value,
			 intrinsic_value, target_bid, min_bid, max_bid, market_price, edge, confidence)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			snap.ID, v.PlayerID, v.Name, v.Position, v.Team, v.ProjectedPoints,
			v.VORP, v.PositionRank, string(v.Tier), v.BaseValue, v.AdjustedValue,
			v.IntrinsicValue, v.TargetBid, v.MinBid, v.MaxBid, v.MarketPrice, v.Edge, v.Confidence,
		)
		if err != nil {
			return fmt.Errorf("insert valuation %s: %w", v.PlayerID, err)
		}
	}

	for name, res := range snap.Report.Results {
		_, err = tx.ExecContext(ctx, `INSERT INTO invariants
			(snapshot_id, name, passed, message, counterexamples)
			VALUES (?,?,?,?,?)`,
			snap.ID, name, boolToInt(res.Passed), res.Message,
			strings.Join(res.Counterexamples, "\n"),
		)
		if err != nil {
			return fmt.Errorf("insert invariant %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
