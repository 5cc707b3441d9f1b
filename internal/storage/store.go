package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"patchmatch/internal/diffparse"
	"patchmatch/internal/engine"
	"patchmatch/internal/match"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// SavePatches upserts every patch of a collection. Raw text is
// zstd-compressed when compress is set.
func (db *DB) SavePatches(patches []*diffparse.Patch, compress bool) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO patches (package, distro, filename, status, hunks, added_lines, removed_lines, raw, raw_compressed, imported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(package, distro, filename) DO UPDATE SET
				status = excluded.status,
				hunks = excluded.hunks,
				added_lines = excluded.added_lines,
				removed_lines = excluded.removed_lines,
				raw = excluded.raw,
				raw_compressed = excluded.raw_compressed,
				imported_at = excluded.imported_at
		`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, p := range patches {
			raw := []byte(p.Raw)
			compressed := 0
			if compress && len(raw) > 0 {
				raw = zstdEncoder.EncodeAll(raw, nil)
				compressed = 1
			}

			if _, err := stmt.Exec(
				p.Package, p.Distro, p.Filename, string(p.Status),
				len(p.Hunks), p.TotalAdded(), p.TotalRemoved(),
				raw, compressed, now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// PatchRaw loads one patch's raw text back, decompressing if needed
func (db *DB) PatchRaw(pkg, distro, filename string) (string, error) {
	var raw []byte
	var compressed int
	err := db.conn.QueryRow(`
		SELECT raw, raw_compressed FROM patches
		WHERE package = ? AND distro = ? AND filename = ?
	`, pkg, distro, filename).Scan(&raw, &compressed)
	if err != nil {
		return "", err
	}

	if compressed != 0 {
		raw, err = zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return "", fmt.Errorf("failed to decompress patch text: %w", err)
		}
	}
	return string(raw), nil
}

// CreateRun records a new batch run
func (db *DB) CreateRun(runID, distroA, distroB string, packages int) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, distro_a, distro_b, packages, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, distroA, distroB, packages, time.Now().UTC().Format(time.RFC3339))
	return err
}

// SaveComparison persists one package's comparison under a run
func (db *DB) SaveComparison(runID string, result *engine.ComparisonResult) error {
	return db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO comparisons (run_id, package, distro_a, distro_b, strip_a, strip_b, ambiguous_strip, identical, similar, partial, unique_a, unique_b)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, package) DO UPDATE SET
				strip_a = excluded.strip_a,
				strip_b = excluded.strip_b,
				ambiguous_strip = excluded.ambiguous_strip,
				identical = excluded.identical,
				similar = excluded.similar,
				partial = excluded.partial,
				unique_a = excluded.unique_a,
				unique_b = excluded.unique_b
		`,
			runID, result.Package, result.DistroA, result.DistroB,
			result.StripA, result.StripB, boolToInt(result.AmbiguousStripLevel),
			result.Summary.Identical, result.Summary.Similar, result.Summary.Partial,
			result.Summary.UniqueA, result.Summary.UniqueB,
		)
		if err != nil {
			return err
		}

		// LastInsertId is meaningless when the upsert took the update
		// path, so read the row id back.
		var comparisonID int64
		if err := tx.QueryRow(`
			SELECT id FROM comparisons WHERE run_id = ? AND package = ?
		`, runID, result.Package).Scan(&comparisonID); err != nil {
			return err
		}

		// Replace match rows wholesale; partial updates have no value
		if _, err := tx.Exec(`DELETE FROM matches WHERE comparison_id = ?`, comparisonID); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO matches (comparison_id, patch_a, patch_b, score, category)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range result.Results {
			var patchA, patchB sql.NullString
			if m.A != nil {
				patchA = sql.NullString{String: m.A.Filename, Valid: true}
			}
			if m.B != nil {
				patchB = sql.NullString{String: m.B.Filename, Valid: true}
			}
			if _, err := stmt.Exec(comparisonID, patchA, patchB, m.Score, string(m.Category)); err != nil {
				return err
			}
		}
		return nil
	})
}

// StoredComparison is a comparison row read back for reporting
type StoredComparison struct {
	Package             string
	DistroA             string
	DistroB             string
	StripA              int
	StripB              int
	AmbiguousStripLevel bool
	Summary             match.Summary
	Matches             []StoredMatch
}

// StoredMatch is one match row read back for reporting
type StoredMatch struct {
	PatchA   string
	PatchB   string
	Score    float64
	Category string
}

// ListComparisons loads every comparison of a run, ordered by package
func (db *DB) ListComparisons(runID string) ([]StoredComparison, error) {
	rows, err := db.conn.Query(`
		SELECT id, package, distro_a, distro_b, strip_a, strip_b, ambiguous_strip, identical, similar, partial, unique_a, unique_b
		FROM comparisons WHERE run_id = ?
		ORDER BY package ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []StoredComparison
	var ids []int64
	for rows.Next() {
		var id int64
		var c StoredComparison
		var ambiguous int
		if err := rows.Scan(&id, &c.Package, &c.DistroA, &c.DistroB,
			&c.StripA, &c.StripB, &ambiguous,
			&c.Summary.Identical, &c.Summary.Similar, &c.Summary.Partial,
			&c.Summary.UniqueA, &c.Summary.UniqueB); err != nil {
			return nil, err
		}
		c.AmbiguousStripLevel = ambiguous != 0
		out = append(out, c)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		matches, err := db.listMatches(id)
		if err != nil {
			return nil, err
		}
		out[i].Matches = matches
	}
	return out, nil
}

func (db *DB) listMatches(comparisonID int64) ([]StoredMatch, error) {
	rows, err := db.conn.Query(`
		SELECT patch_a, patch_b, score, category
		FROM matches WHERE comparison_id = ?
		ORDER BY id ASC
	`, comparisonID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []StoredMatch
	for rows.Next() {
		var m StoredMatch
		var patchA, patchB sql.NullString
		if err := rows.Scan(&patchA, &patchB, &m.Score, &m.Category); err != nil {
			return nil, err
		}
		m.PatchA = patchA.String
		m.PatchB = patchB.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// LatestRunID returns the most recent run, or empty when none exist
func (db *DB) LatestRunID() (string, error) {
	var id string
	err := db.conn.QueryRow(`
		SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
