package sba

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meduaid/qb-portal/internal/policy"
)

// SQLStore persists submissions one row each with choices and images as JSON
// columns, matching the station store's conventions.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, sub Submission) error {
	choicesJSON, imagesJSON, err := marshalDocs(sub)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions
		(id, writer_id, status, question, choices_json, correct_answer, explanation,
		 category, subject, topic, images_json, rejection_reason, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		sub.ID, sub.Writer, sub.Status, sub.Question, choicesJSON, sub.CorrectAnswer,
		sub.Explanation, sub.Category, sub.Subject, sub.Topic, imagesJSON,
		sub.RejectionReason, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, writer_id, status, question,
		choices_json, correct_answer, explanation, category, subject, topic,
		images_json, rejection_reason, created_at, updated_at
		FROM submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

func (s *SQLStore) Update(ctx context.Context, sub Submission) error {
	choicesJSON, imagesJSON, err := marshalDocs(sub)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET
		status=$2, question=$3, choices_json=$4, correct_answer=$5, explanation=$6,
		category=$7, subject=$8, topic=$9, images_json=$10, rejection_reason=$11,
		updated_at=$12
		WHERE id=$1`,
		sub.ID, sub.Status, sub.Question, choicesJSON, sub.CorrectAnswer,
		sub.Explanation, sub.Category, sub.Subject, sub.Topic, imagesJSON,
		sub.RejectionReason, sub.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", sub.ID, policy.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", id, policy.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Submission, error) {
	q := `SELECT id, writer_id, status, question, choices_json, correct_answer,
		explanation, category, subject, topic, images_json, rejection_reason,
		created_at, updated_at FROM submissions WHERE 1=1`
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
	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var choicesJSON, imagesJSON string
	err := row.Scan(&sub.ID, &sub.Writer, &sub.Status, &sub.Question, &choicesJSON,
		&sub.CorrectAnswer, &sub.Explanation, &sub.Category, &sub.Subject, &sub.Topic,
		&imagesJSON, &sub.RejectionReason, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, fmt.Errorf("submission: %w", policy.ErrNotFound)
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(choicesJSON), &sub.Choices); err != nil {
		sub.Choices = []Choice{}
	}
	if imagesJSON != "" {
		if err := json.Unmarshal([]byte(imagesJSON), &sub.Images); err != nil {
			return Submission{}, err
		}
	}
	return sub, nil
}

func marshalDocs(sub Submission) (choices, images string, err error) {
	b, err := json.Marshal(sub.Choices)
	if err != nil {
		return "", "", err
	}
	choices = string(b)
	if b, err = json.Marshal(sub.Images); err != nil {
		return "", "", err
	}
	return choices, string(b), nil
}
