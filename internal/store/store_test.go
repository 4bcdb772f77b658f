package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// compileRecord compiles a fixture network into a record.
func compileRecord(t *testing.T, species []ir.Species, reactions []ir.Reaction, zeroed map[string]bool, seq int64) ModelRecord {
	t.Helper()
	cat, table := testutil.MustCatalogs(species, reactions)
	s := config.NewSettings(testutil.SiteSpecies, 500)
	s.SiteArea = 6
	m, err := compiler.Compile(&compiler.Network{Species: cat, Reactions: table}, s, compiler.Options{Zeroed: zeroed})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	rec, err := NewModelRecord(m, []byte("# worksheet\n"), seq)
	if err != nil {
		t.Fatalf("NewModelRecord() failed: %v", err)
	}
	return rec
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM models").Scan(&count); err != nil {
			t.Errorf("query failed: %v", err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"user_version": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestWriteModel_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	species, reactions := testutil.SurfaceStep()

	rec := compileRecord(t, species, reactions, nil, 1)
	inserted, err := s.WriteModel(ctx, rec)
	if err != nil {
		t.Fatalf("WriteModel() failed: %v", err)
	}
	if !inserted {
		t.Error("first write should insert")
	}

	again := compileRecord(t, species, reactions, nil, 7)
	if again.Hash != rec.Hash {
		t.Fatalf("same network hashed differently: %s vs %s", rec.Hash, again.Hash)
	}
	inserted, err = s.WriteModel(ctx, again)
	if err != nil {
		t.Fatalf("second WriteModel() failed: %v", err)
	}
	if inserted {
		t.Error("second write of the same model should be a no-op")
	}

	got, err := s.ReadModel(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("ReadModel() failed: %v", err)
	}
	if got.Seq != 1 {
		t.Errorf("seq = %d, want the original 1", got.Seq)
	}
	if got.Site != "iO" || got.SpeciesCount != 2 || got.ReactionCount != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Maple != "# worksheet\n" {
		t.Errorf("maple = %q", got.Maple)
	}
	if h := ir.MustModelHash(got.Model); h != rec.Hash {
		t.Errorf("stored model hashes to %s, want %s", h, rec.Hash)
	}
}

func TestReadModel_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadModel(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListModels_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sa, ra := testutil.SurfaceStep()
	sb, rb := testutil.AdsorptionStep()
	a := compileRecord(t, sa, ra, nil, 2)
	b := compileRecord(t, sb, rb, nil, 1)
	for _, rec := range []ModelRecord{a, b} {
		if _, err := s.WriteModel(ctx, rec); err != nil {
			t.Fatalf("WriteModel() failed: %v", err)
		}
	}

	models, err := s.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Hash != b.Hash || models[1].Hash != a.Hash {
		t.Error("models not ordered by seq")
	}
}

func TestListModels_Empty(t *testing.T) {
	s := createTestStore(t)
	models, err := s.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() failed: %v", err)
	}
	if models == nil || len(models) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", models)
	}
}

func TestWriteBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	species, reactions := testutil.AdsorptionStep()

	base := compileRecord(t, species, reactions, nil, 1)
	r1 := compileRecord(t, species, reactions, map[string]bool{"r1": true}, 2)
	r2 := compileRecord(t, species, reactions, map[string]bool{"r2": true}, 3)

	variants := []VariantRecord{
		{BatchID: "batch-1", ReactionID: "", Seq: 1, ModelHash: base.Hash},
		{BatchID: "batch-1", ReactionID: "r1", Seq: 2, ModelHash: r1.Hash},
		{BatchID: "batch-1", ReactionID: "r2", Seq: 3, ModelHash: r2.Hash},
	}
	models := []ModelRecord{base, r1, r2}

	for i := 0; i < 2; i++ {
		if err := s.WriteBatch(ctx, models, variants); err != nil {
			t.Fatalf("WriteBatch() #%d failed: %v", i, err)
		}
	}

	got, err := s.ReadBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("ReadBatch() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d variants, want 3", len(got))
	}
	for i := range variants {
		if got[i] != variants[i] {
			t.Errorf("variant %d = %+v, want %+v", i, got[i], variants[i])
		}
	}

	batches, err := s.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches() failed: %v", err)
	}
	if len(batches) != 1 || batches[0] != "batch-1" {
		t.Errorf("batches = %v", batches)
	}

	seq, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 3 {
		t.Errorf("MaxSeq() = %d, want 3", seq)
	}
}

func TestWriteBatch_RollsBackOnDanglingVariant(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	species, reactions := testutil.SurfaceStep()
	rec := compileRecord(t, species, reactions, nil, 1)

	err := s.WriteBatch(ctx, []ModelRecord{rec}, []VariantRecord{
		{BatchID: "b", Seq: 1, ModelHash: "no-such-model"},
	})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}

	models, err := s.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() failed: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("transaction was not rolled back: %d models", len(models))
	}
}

func TestReadBatch_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadBatch(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMaxSeq_Empty(t *testing.T) {
	s := createTestStore(t)
	seq, err := s.MaxSeq(context.Background())
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() = %d, want 0", seq)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("journal_mode", "memory"); err != nil {
		t.Error(err)
	}
	species, reactions := testutil.SurfaceStep()
	rec := compileRecord(t, species, reactions, nil, 1)
	if _, err := s.WriteModel(context.Background(), rec); err != nil {
		t.Fatalf("WriteModel() failed: %v", err)
	}
	if _, err := s.ReadModel(context.Background(), rec.Hash); err != nil {
		t.Errorf("ReadModel() failed: %v", err)
	}
}
