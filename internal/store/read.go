package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const modelColumns = `hash, seq, site, species_count, reaction_count, model_version, compiler_version, model, maple`

// ReadModel returns the model with the given hash.
// Returns ErrNotFound if not found.
func (s *Store) ReadModel(ctx context.Context, hash string) (ModelRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE hash = ?`, hash)
	rec, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelRecord{}, fmt.Errorf("model %s: %w", hash, ErrNotFound)
	}
	return rec, err
}

// ListModels returns every stored model.
// Results are ordered deterministically: ORDER BY seq ASC, hash ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListModels(ctx context.Context) ([]ModelRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+modelColumns+`
		FROM models
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	models := []ModelRecord{}
	for rows.Next() {
		rec, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}
	return models, nil
}

// ReadBatch returns the variants of one sweep batch, baseline first.
// Ordered by seq ASC, reaction_id ASC COLLATE BINARY.
func (s *Store) ReadBatch(ctx context.Context, batchID string) ([]VariantRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, reaction_id, seq, model_hash
		FROM variants
		WHERE batch_id = ?
		ORDER BY seq ASC, reaction_id COLLATE BINARY ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	variants := []VariantRecord{}
	for rows.Next() {
		var v VariantRecord
		if err := rows.Scan(&v.BatchID, &v.ReactionID, &v.Seq, &v.ModelHash); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	return variants, nil
}

// ListBatches returns all batch IDs, in the order their first variant was
// stored.
func (s *Store) ListBatches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id
		FROM variants
		GROUP BY batch_id
		ORDER BY MIN(seq) ASC, batch_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// MaxSeq returns the highest seq used by any record, 0 for an empty store.
// Callers resume their logical clock from it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(COALESCE((SELECT MAX(seq) FROM models), 0),
		           COALESCE((SELECT MAX(seq) FROM variants), 0))
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (ModelRecord, error) {
	var (
		rec       ModelRecord
		modelJSON string
	)
	err := row.Scan(
		&rec.Hash,
		&rec.Seq,
		&rec.Site,
		&rec.SpeciesCount,
		&rec.ReactionCount,
		&rec.ModelVersion,
		&rec.CompilerVersion,
		&modelJSON,
		&rec.Maple,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ModelRecord{}, err
		}
		return ModelRecord{}, fmt.Errorf("scan model: %w", err)
	}
	if rec.Model, err = unmarshalModel(modelJSON); err != nil {
		return ModelRecord{}, err
	}
	return rec, nil
}
