package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/store"
)

// loadSchema returns the configured schema, or the built-in one. A schema
// file must compile and pass validation.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	s, err := schema.CompileFile(path)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(s); len(errs) > 0 {
		return nil, fmt.Errorf("schema %s: %w (%d error(s); run validate for all)", path, errs[0], len(errs))
	}
	slog.Debug("schema loaded", "path", path, "sections", len(s.Sections), "fields", s.FieldCount())
	return s, nil
}

// openProfile opens the database and loads the profile repository.
// The caller closes the returned store.
func openProfile(ctx context.Context, path string) (*store.Store, *store.Repository, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	repo, err := store.NewRepository(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	slog.Debug("profile opened", "db", path)
	return st, repo, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns ctx, or Background if the command has none.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
