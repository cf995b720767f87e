package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"grammar-proxy/api/internal/grammar"
)

// CheckRepo persists completed checks and serves them back as a cache keyed
// by (text_hash, model).
type CheckRepo struct{ DB *pgxpool.Pool }

func NewCheckRepo(db *pgxpool.Pool) *CheckRepo { return &CheckRepo{DB: db} }

// Find returns the stored corrections for (hash, model). Rows older than
// maxAge count as missing when maxAge > 0. A broken JSON payload also counts
// as missing so the caller asks the model again.
func (r *CheckRepo) Find(ctx context.Context, hash, model string, maxAge time.Duration) ([]grammar.Correction, bool, error) {
	const q = `select corrections, created_at
	           from checks
	           where text_hash=$1 and model=$2`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRow(ctx, q, hash, model).Scan(&js, &ts); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: find check: %w", err)
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, false, nil
	}
	var cs []grammar.Correction
	if err := json.Unmarshal(js, &cs); err != nil {
		return nil, false, nil
	}
	if cs == nil {
		cs = []grammar.Correction{}
	}
	return cs, true, nil
}

// Save upserts a check. PK: (text_hash, model).
func (r *CheckRepo) Save(ctx context.Context, rec grammar.Record) error {
	cs := rec.Corrections
	if cs == nil {
		cs = []grammar.Correction{}
	}
	js, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("store: marshal corrections: %w", err)
	}
	const q = `
insert into checks (text_hash, model, language, original, corrected, corrections)
values ($1,$2,$3,$4,$5,$6)
on conflict (text_hash, model) do update
set language = excluded.language,
    original = excluded.original,
    corrected = excluded.corrected,
    corrections = excluded.corrections,
    created_at = now()`
	if _, err := r.DB.Exec(ctx, q, rec.Hash, rec.Model, rec.Language, rec.Original, rec.Corrected, js); err != nil {
		return fmt.Errorf("store: save check: %w", err)
	}
	return nil
}

// Recent lists the latest checks, newest first.
func (r *CheckRepo) Recent(ctx context.Context, limit int) ([]grammar.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
select text_hash, model, language, original, corrected, corrections, created_at
from checks
order by created_at desc, id desc
limit $1`
	rows, err := r.DB.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent checks: %w", err)
	}
	defer rows.Close()

	out := []grammar.Record{}
	for rows.Next() {
		var (
			rec grammar.Record
			js  []byte
		)
		if err := rows.Scan(&rec.Hash, &rec.Model, &rec.Language, &rec.Original, &rec.Corrected, &js, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan check: %w", err)
		}
		if err := json.Unmarshal(js, &rec.Corrections); err != nil || rec.Corrections == nil {
			rec.Corrections = []grammar.Correction{}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent checks: %w", err)
	}
	return out, nil
}

// PurgeOlderThan deletes checks created before now-olderThan.
func (r *CheckRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("store: olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from checks where created_at < $1`
	tag, err := r.DB.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: purge checks: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CheckRepo) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
