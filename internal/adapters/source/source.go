// Package source loads player pools from JSON or CSV files for the CLI.
// The engine itself only ever sees in-memory PlayerScoreInput slices.
package source

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// ErrBadRecord marks a malformed input row.
var ErrBadRecord = errors.New("bad player record")

// LoadJSON reads a JSON array of PlayerScoreInput records.
func LoadJSON(path string) ([]model.PlayerScoreInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var pool []model.PlayerScoreInput
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, p := range pool {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, i, err)
		}
	}
	return pool, nil
}

// csv column layout; the first five columns are required.
var csvHeader = []string{
	"id", "name", "position", "team", "projected_points",
	"market_price", "adp", "sources", "cv",
}

// LoadCSV reads a headered CSV of players. Optional trailing columns
// (market_price, adp, sources, cv) may be empty or absent.
func LoadCSV(path string) ([]model.PlayerScoreInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // optional trailing columns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrBadRecord, path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvHeader[:5] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %q", ErrBadRecord, path, required)
		}
	}

	pool := make([]model.PlayerScoreInput, 0, len(rows)-1)
	for n, row := range rows[1:] {
		p, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		pool = append(pool, p)
	}
	return pool, nil
}

func parseRow(row []string, cols map[string]int) (model.PlayerScoreInput, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	p := model.PlayerScoreInput{
		ID:       field("id"),
		Name:     field("name"),
		Position: strings.ToUpper(field("position")),
		Team:     field("team"),
	}

	pts, err := strconv.ParseFloat(field("projected_points"), 64)
	if err != nil {
		return p, fmt.Errorf("%w: projected_points %q", ErrBadRecord, field("projected_points"))
	}
	p.ProjectedPoints = pts

	if s := field("market_price"); s != "" {
		mp, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%w: market_price %q", ErrBadRecord, s)
		}
		p.MarketPrice = mp
	}
	if s := field("adp"); s != "" {
		adp, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("%w: adp %q", ErrBadRecord, s)
		}
		p.ADP = adp
	}
	if s := field("sources"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%w: sources %q", ErrBadRecord, s)
		}
		p.ProjectionSources = n
	}
	if s := field("cv"); s != "" {
		cv, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("%w: cv %q", ErrBadRecord, s)
		}
		p.ProjectionCV = cv
	}

	return p, validate(p)
}

func validate(p model.PlayerScoreInput) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrBadRecord)
	case p.Position == "":
		return fmt.Errorf("%w: empty position for %s", ErrBadRecord, p.ID)
	case p.ProjectedPoints < 0:
		return fmt.Errorf("%w: negative projected points for %s", ErrBadRecord, p.ID)
	}
	return nil
}
