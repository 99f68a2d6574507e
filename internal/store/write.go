package store

import (
	"context"
	"fmt"

	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// WriteMerge records a section merge: the merge log gets one row, each
// field in partial with a value is upserted and each field with a nil
// value is deleted. Fields absent from partial and other sections are
// untouched. Returns the merge's seq.
//
// The whole merge is one transaction.
func (s *Store) WriteMerge(ctx context.Context, section schema.SectionID, partial profile.Section) (int64, error) {
	fieldsJSON, err := marshalSection(partial)
	if err != nil {
		return 0, fmt.Errorf("write merge: %w", err)
	}
	clearedJSON, err := marshalCleared(partial)
	if err != nil {
		return 0, fmt.Errorf("write merge: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write merge: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO merges (section, fields, cleared, field_count)
		VALUES (?, ?, ?, ?)
	`, string(section), fieldsJSON, clearedJSON, len(partial))
	if err != nil {
		return 0, fmt.Errorf("write merge: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write merge: seq: %w", err)
	}

	for _, field := range partial.FieldNames() {
		v := partial[field]
		if v == nil {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM profile_fields
				WHERE section = ? AND field = ?
			`, string(section), field)
			if err != nil {
				return 0, fmt.Errorf("write merge: clear %s: %w", field, err)
			}
			continue
		}
		valueJSON, err := marshalValue(v)
		if err != nil {
			return 0, fmt.Errorf("write merge: field %s: %w", field, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profile_fields (section, field, value, merge_seq)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(section, field) DO UPDATE SET
				value = excluded.value,
				merge_seq = excluded.merge_seq
		`, string(section), field, valueJSON, seq)
		if err != nil {
			return 0, fmt.Errorf("write merge: field %s: %w", field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write merge: commit: %w", err)
	}
	return seq, nil
}

// SubmitSection appends a section to the submission outbox.
// Implements submit.Submitter.
func (s *Store) SubmitSection(ctx context.Context, section schema.SectionID, values profile.Section) error {
	payload, err := marshalSection(values)
	if err != nil {
		return fmt.Errorf("submit section %s: %w", section, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (section, payload)
		VALUES (?, ?)
	`, string(section), payload)
	if err != nil {
		return fmt.Errorf("submit section %s: %w", section, err)
	}
	return nil
}
