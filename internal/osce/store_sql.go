package osce

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meduaid/qb-portal/internal/policy"
	"github.com/meduaid/qb-portal/internal/scoring"
)

// SQLStore persists stations in a single row each, with the scoring structures
// and image list as JSON columns. Works against both the sqlite and postgres
// drivers wired in internal/db.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, st Station) error {
	schemeJSON, fuJSON, imagesJSON, err := marshalDocs(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO stations
		(id, writer_id, status, title, category, subject, topic, case_description,
		 images_json, marking_scheme_json, follow_ups_json, total_marks, rejection_reason,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		st.ID, st.Writer, st.Status, st.Title, st.Category, st.Subject, st.Topic,
		st.CaseDescription, imagesJSON, schemeJSON, fuJSON, st.TotalMarks,
		st.RejectionReason, st.CreatedAt, st.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Station, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, writer_id, status, title, category,
		subject, topic, case_description, images_json, marking_scheme_json,
		follow_ups_json, total_marks, rejection_reason, created_at, updated_at
		FROM stations WHERE id=$1`, id)
	return scanStation(row)
}

func (s *SQLStore) Update(ctx context.Context, st Station) error {
	schemeJSON, fuJSON, imagesJSON, err := marshalDocs(st)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE stations SET
		status=$2, title=$3, category=$4, subject=$5, topic=$6, case_description=$7,
		images_json=$8, marking_scheme_json=$9, follow_ups_json=$10, total_marks=$11,
		rejection_reason=$12, updated_at=$13
		WHERE id=$1`,
		st.ID, st.Status, st.Title, st.Category, st.Subject, st.Topic,
		st.CaseDescription, imagesJSON, schemeJSON, fuJSON, st.TotalMarks,
		st.RejectionReason, st.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("station %s: %w", st.ID, policy.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("station %s: %w", id, policy.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Station, error) {
	q := `SELECT id, writer_id, status, title, category, subject, topic,
		case_description, images_json, marking_scheme_json, follow_ups_json,
		total_marks, rejection_reason, created_at, updated_at FROM stations WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, v interface{}) {
		n++
		q += fmt.Sprintf(" AND "+clause, n)
		args = append(args, v)
	}
	if opts.Writer != "" {
		add("writer_id=$%d", opts.Writer)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	if opts.ExcludeDraft {
		add("status<>$%d", policy.StatusDraft)
	}
	q += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		n++
		q += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		n++
		q += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStation(row rowScanner) (Station, error) {
	var st Station
	var imagesJSON, schemeJSON, fuJSON string
	err := row.Scan(&st.ID, &st.Writer, &st.Status, &st.Title, &st.Category,
		&st.Subject, &st.Topic, &st.CaseDescription, &imagesJSON, &schemeJSON,
		&fuJSON, &st.TotalMarks, &st.RejectionReason, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Station{}, fmt.Errorf("station: %w", policy.ErrNotFound)
		}
		return Station{}, err
	}
	if imagesJSON != "" {
		if err := json.Unmarshal([]byte(imagesJSON), &st.Images); err != nil {
			return Station{}, err
		}
	}
	if err := json.Unmarshal([]byte(schemeJSON), &st.MarkingScheme); err != nil {
		st.MarkingScheme = []scoring.Section{}
	}
	if err := json.Unmarshal([]byte(fuJSON), &st.FollowUps); err != nil {
		st.FollowUps = []scoring.FollowUp{}
	}
	return st, nil
}

func marshalDocs(st Station) (scheme, followUps, images string, err error) {
	b, err := json.Marshal(st.MarkingScheme)
	if err != nil {
		return "", "", "", err
	}
	scheme = string(b)
	if b, err = json.Marshal(st.FollowUps); err != nil {
		return "", "", "", err
	}
	followUps = string(b)
	if b, err = json.Marshal(st.Images); err != nil {
		return "", "", "", err
	}
	return scheme, followUps, string(b), nil
}
