package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// Repository is a profile.Store backed by SQLite.
//
// Reads are served from an in-memory copy loaded at construction. Each
// MergeSection updates memory first, then writes through to the database.
// A failed write is logged and recorded in WriteErrors; the in-memory
// profile stays authoritative for the rest of the process, so the engine
// never sees a merge fail.
type Repository struct {
	mem *profile.Memory
	db  *Store

	// profile.Store has no context parameter; write-throughs use the one
	// the repository was opened with.
	ctx    context.Context
	errors atomic.Int64
}

// NewRepository loads the persisted profile into memory.
func NewRepository(ctx context.Context, db *Store) (*Repository, error) {
	sections, err := db.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("new repository: %w", err)
	}

	mem := profile.NewMemory()
	for id, sec := range sections {
		mem.MergeSection(id, sec)
	}

	slog.Debug("profile loaded", "sections", len(sections))
	return &Repository{mem: mem, db: db, ctx: ctx}, nil
}

// GetSection implements profile.Reader.
func (r *Repository) GetSection(id schema.SectionID) profile.Section {
	return r.mem.GetSection(id)
}

// MergeSection implements profile.Store.
func (r *Repository) MergeSection(id schema.SectionID, partial profile.Section) {
	r.mem.MergeSection(id, partial)

	seq, err := r.db.WriteMerge(r.ctx, id, partial)
	if err != nil {
		r.errors.Add(1)
		slog.Error("profile write-through failed",
			"section", id,
			"fields", len(partial),
			"error", err,
		)
		return
	}
	slog.Debug("profile merge persisted", "section", id, "seq", seq)
}

// Snapshot returns every non-empty section.
func (r *Repository) Snapshot() map[schema.SectionID]profile.Section {
	return r.mem.Snapshot()
}

// WriteErrors returns how many write-throughs have failed.
func (r *Repository) WriteErrors() int64 {
	return r.errors.Load()
}
