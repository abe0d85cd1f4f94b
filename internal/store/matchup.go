package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pitch.report/internal/pitch"
)

// ErrMatchupNotFound is returned when no matchup has the requested ID.
var ErrMatchupNotFound = errors.New("matchup not found")

// Matchup is a pitcher/batter pairing that owns an ordered list of pitches.
// Version increases every time pitches are appended, so derived views can
// be cached against it.
type Matchup struct {
	ID         string    `json:"id"`
	Pitcher    string    `json:"pitcher"`
	Batter     string    `json:"batter"`
	Version    int       `json:"version"`
	PitchCount int       `json:"pitchCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateMatchup inserts a new, empty matchup and returns it.
func (db *DB) CreateMatchup(ctx context.Context, pitcher, batter string) (*Matchup, error) {
	m := &Matchup{
		ID:        uuid.NewString(),
		Pitcher:   pitcher,
		Batter:    batter,
		CreatedAt: time.Unix(db.clock.Now().Unix(), 0),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO matchups (matchup_id, pitcher, batter, version, created_at) VALUES (?, ?, ?, 0, ?)`,
		m.ID, m.Pitcher, m.Batter, m.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create matchup: %w", err)
	}
	return m, nil
}

// AppendPitches adds recs to the end of the matchup's pitch list and bumps
// its version. It returns the new version.
func (db *DB) AppendPitches(ctx context.Context, matchupID string, recs []pitch.PitchRecord) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var version, next int
	err = tx.QueryRowContext(ctx,
		`SELECT m.version, COALESCE((SELECT MAX(seq) + 1 FROM pitches p WHERE p.matchup_id = m.matchup_id), 0)
		FROM matchups m WHERE m.matchup_id = ?`, matchupID,
	).Scan(&version, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMatchupNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read matchup: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pitches (
			matchup_id, seq, pitch_type, release_speed, move_horiz, move_vert,
			release_lateral, release_vertical, release_depth, release_extension,
			plate_lateral, plate_vertical
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		_, err := stmt.ExecContext(ctx,
			matchupID, next+i, r.Category,
			nullable(r.Speed), nullable(r.MoveHoriz), nullable(r.MoveVert),
			nullable(r.ReleasePos.Lateral), nullable(r.ReleasePos.Vertical), nullable(r.ReleasePos.Depth),
			nullable(r.ReleaseExtension),
			nullable(r.PlatePos.Lateral), nullable(r.PlatePos.Vertical),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert pitch %d: %w", i, err)
		}
	}

	version++
	if _, err := tx.ExecContext(ctx, `UPDATE matchups SET version = ? WHERE matchup_id = ?`, version, matchupID); err != nil {
		return 0, fmt.Errorf("failed to bump matchup version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pitches: %w", err)
	}
	return version, nil
}

const matchupColumns = `
	m.matchup_id, m.pitcher, m.batter, m.version, m.created_at,
	(SELECT COUNT(*) FROM pitches p WHERE p.matchup_id = m.matchup_id)`

// Matchup retrieves a matchup by ID.
func (db *DB) Matchup(ctx context.Context, id string) (*Matchup, error) {
	row := db.QueryRowContext(ctx, `SELECT `+matchupColumns+` FROM matchups m WHERE m.matchup_id = ?`, id)
	m, err := scanMatchup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get matchup: %w", err)
	}
	return m, nil
}

// Matchups lists every matchup, newest first.
func (db *DB) Matchups(ctx context.Context) ([]Matchup, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+matchupColumns+` FROM matchups m ORDER BY m.created_at DESC, m.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchups: %w", err)
	}
	defer rows.Close()

	out := []Matchup{}
	for rows.Next() {
		m, err := scanMatchup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan matchup: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Pitches returns the matchup's records in insertion order. NULL columns
// come back as NaN, the in-memory marker for a missing value.
func (db *DB) Pitches(ctx context.Context, matchupID string) ([]pitch.PitchRecord, error) {
	if _, err := db.Matchup(ctx, matchupID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT pitch_type, release_speed, move_horiz, move_vert,
			release_lateral, release_vertical, release_depth, release_extension,
			plate_lateral, plate_vertical
		FROM pitches WHERE matchup_id = ? ORDER BY seq`, matchupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pitches: %w", err)
	}
	defer rows.Close()

	out := []pitch.PitchRecord{}
	for rows.Next() {
		var (
			category                       string
			speed, moveH, moveV            sql.NullFloat64
			relLat, relVert, relDepth, ext sql.NullFloat64
			plateLat, plateVert            sql.NullFloat64
		)
		if err := rows.Scan(&category, &speed, &moveH, &moveV,
			&relLat, &relVert, &relDepth, &ext, &plateLat, &plateVert); err != nil {
			return nil, fmt.Errorf("failed to scan pitch: %w", err)
		}
		out = append(out, pitch.PitchRecord{
			Category:         category,
			Speed:            value(speed),
			MoveHoriz:        value(moveH),
			MoveVert:         value(moveV),
			ReleasePos:       pitch.Point3{Lateral: value(relLat), Vertical: value(relVert), Depth: value(relDepth)},
			ReleaseExtension: value(ext),
			PlatePos:         pitch.Point2{Lateral: value(plateLat), Vertical: value(plateVert)},
		})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatchup(s rowScanner) (*Matchup, error) {
	var m Matchup
	var createdAt int64
	if err := s.Scan(&m.ID, &m.Pitcher, &m.Batter, &m.Version, &createdAt, &m.PitchCount); err != nil {
		return nil, err
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func value(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
