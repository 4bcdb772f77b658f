package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/amk/internal/ir"
)

// ModelRecord is a stored model.
type ModelRecord struct {
	Hash            string
	Seq             int64
	Site            string
	SpeciesCount    int
	ReactionCount   int
	ModelVersion    string
	CompilerVersion string
	Model           *ir.Model
	Maple           string
}

// NewModelRecord builds the record of m, keyed by its content hash.
func NewModelRecord(m *ir.Model, maple []byte, seq int64) (ModelRecord, error) {
	hash, err := ir.ModelHash(m)
	if err != nil {
		return ModelRecord{}, err
	}
	return ModelRecord{
		Hash:            hash,
		Seq:             seq,
		Site:            m.SiteSpecies,
		SpeciesCount:    1 + len(m.Surface) + len(m.Drivers),
		ReactionCount:   len(m.Reactions),
		ModelVersion:    ir.ModelVersion,
		CompilerVersion: ir.CompilerVersion,
		Model:           m,
		Maple:           string(maple),
	}, nil
}

// VariantRecord links one member of a sweep batch to its model.
// ReactionID is empty for the baseline.
type VariantRecord struct {
	BatchID    string
	ReactionID string
	Seq        int64
	ModelHash  string
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteModel inserts a model record.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency: a model that is already
// stored keeps its original seq. Returns whether a new row was inserted.
func (s *Store) WriteModel(ctx context.Context, rec ModelRecord) (inserted bool, err error) {
	return writeModel(ctx, s.db, rec)
}

func writeModel(ctx context.Context, db execer, rec ModelRecord) (bool, error) {
	modelJSON, err := marshalModel(rec.Model)
	if err != nil {
		return false, fmt.Errorf("write model: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO models
		(hash, seq, site, species_count, reaction_count, model_version, compiler_version, model, maple)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		rec.Hash,
		rec.Seq,
		rec.Site,
		rec.SpeciesCount,
		rec.ReactionCount,
		rec.ModelVersion,
		rec.CompilerVersion,
		modelJSON,
		rec.Maple,
	)
	if err != nil {
		return false, fmt.Errorf("write model: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write model: rows affected: %w", err)
	}
	return rows > 0, nil
}

// WriteBatch stores the models and variants of one sweep atomically.
// Models already present are skipped; variants are idempotent on
// (batch_id, reaction_id).
func (s *Store) WriteBatch(ctx context.Context, models []ModelRecord, variants []VariantRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, rec := range models {
		if _, err := writeModel(ctx, tx, rec); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}

	for _, v := range variants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO variants
			(batch_id, reaction_id, seq, model_hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(batch_id, reaction_id) DO NOTHING
		`,
			v.BatchID,
			v.ReactionID,
			v.Seq,
			v.ModelHash,
		)
		if err != nil {
			return fmt.Errorf("write batch: variant %q/%q: %w", v.BatchID, v.ReactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write batch: commit: %w", err)
	}
	return nil
}
