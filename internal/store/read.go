package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// MergeRecord is one row of the merge log.
type MergeRecord struct {
	Seq        int64            `json:"seq"`
	Section    schema.SectionID `json:"section"`
	Fields     profile.Section  `json:"fields"`
	Cleared    []string         `json:"cleared,omitempty"` // fields the merge removed
	FieldCount int              `json:"field_count"`
}

// SubmissionRecord is one row of the submission outbox.
type SubmissionRecord struct {
	Seq     int64            `json:"seq"`
	Section schema.SectionID `json:"section"`
	Payload profile.Section  `json:"payload"`
	Status  string           `json:"status"`
}

// LoadProfile reads every persisted field, grouped by section.
func (s *Store) LoadProfile(ctx context.Context) (map[schema.SectionID]profile.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT section, field, value
		FROM profile_fields
		ORDER BY section ASC, field ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	defer rows.Close()

	out := make(map[schema.SectionID]profile.Section)
	for rows.Next() {
		var section, field, valueJSON string
		if err := rows.Scan(&section, &field, &valueJSON); err != nil {
			return nil, fmt.Errorf("load profile: scan: %w", err)
		}
		v, err := answer.UnmarshalValue([]byte(valueJSON))
		if err != nil {
			return nil, fmt.Errorf("load profile: %s.%s: %w", section, field, err)
		}
		id := schema.SectionID(section)
		if out[id] == nil {
			out[id] = make(profile.Section)
		}
		out[id][field] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return out, nil
}

// ReadMerges returns the merge log in seq order. An empty section returns
// every section's merges.
func (s *Store) ReadMerges(ctx context.Context, section schema.SectionID) ([]MergeRecord, error) {
	query := `
		SELECT seq, section, fields, cleared, field_count
		FROM merges
		ORDER BY seq ASC
	`
	args := []any{}
	if section != "" {
		query = `
			SELECT seq, section, fields, cleared, field_count
			FROM merges
			WHERE section = ?
			ORDER BY seq ASC
		`
		args = append(args, string(section))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	defer rows.Close()

	var out []MergeRecord
	for rows.Next() {
		var (
			rec        MergeRecord
			sectionStr string
			fieldsJSON  string
			clearedJSON string
		)
		if err := rows.Scan(&rec.Seq, &sectionStr, &fieldsJSON, &clearedJSON, &rec.FieldCount); err != nil {
			return nil, fmt.Errorf("read merges: scan: %w", err)
		}
		rec.Section = schema.SectionID(sectionStr)
		if rec.Fields, err = unmarshalSection(fieldsJSON); err != nil {
			return nil, fmt.Errorf("read merges: seq %d: %w", rec.Seq, err)
		}
		if err := json.Unmarshal([]byte(clearedJSON), &rec.Cleared); err != nil {
			return nil, fmt.Errorf("read merges: seq %d: cleared: %w", rec.Seq, err)
		}
		if len(rec.Cleared) == 0 {
			rec.Cleared = nil
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	return out, nil
}

// CountMerges returns the number of merges logged for a section, or for
// all sections when section is empty.
func (s *Store) CountMerges(ctx context.Context, section schema.SectionID) (int, error) {
	var row *sql.Row
	if section == "" {
		row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM merges`)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM merges WHERE section = ?`, string(section))
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count merges: %w", err)
	}
	return n, nil
}

// ReadSubmissions returns the submission outbox in seq order.
func (s *Store) ReadSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, section, payload, status
		FROM submissions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRecord
	for rows.Next() {
		var (
			rec         SubmissionRecord
			sectionStr  string
			payloadJSON string
		)
		if err := rows.Scan(&rec.Seq, &sectionStr, &payloadJSON, &rec.Status); err != nil {
			return nil, fmt.Errorf("read submissions: scan: %w", err)
		}
		rec.Section = schema.SectionID(sectionStr)
		if rec.Payload, err = unmarshalSection(payloadJSON); err != nil {
			return nil, fmt.Errorf("read submissions: seq %d: %w", rec.Seq, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	return out, nil
}
