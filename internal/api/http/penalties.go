package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Penalty is an admin-issued mark against a writer (plagiarized content,
// repeated rejections, etc.). Plain CRUD, admin-only.
type Penalty struct {
	ID        string  `json:"id"`
	WriterID  string  `json:"writer_id"`
	Reason    string  `json:"reason"`
	Amount    float64 `json:"amount"`
	CreatedAt int64   `json:"created_at"`
}

type createPenaltyReq struct {
	WriterID string  `json:"writer_id" validate:"required"`
	Reason   string  `json:"reason" validate:"required"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

func CreatePenaltyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPenaltyReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p := Penalty{
			ID:        uuid.NewString(),
			WriterID:  req.WriterID,
			Reason:    req.Reason,
			Amount:    req.Amount,
			CreatedAt: time.Now().Unix(),
		}
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO penalties (id, writer_id, reason, amount, created_at) VALUES ($1,$2,$3,$4,$5)`,
			p.ID, p.WriterID, p.Reason, p.Amount, p.CreatedAt)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func ListPenaltiesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writerID := r.URL.Query().Get("writer")
		var rows *sql.Rows
		var err error
		if writerID == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, writer_id, reason, amount, created_at FROM penalties ORDER BY created_at DESC`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, writer_id, reason, amount, created_at FROM penalties WHERE writer_id=$1 ORDER BY created_at DESC`, writerID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Penalty{}
		for rows.Next() {
			var p Penalty
			if err := rows.Scan(&p.ID, &p.WriterID, &p.Reason, &p.Amount, &p.CreatedAt); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			out = append(out, p)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func DeletePenaltyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := db.ExecContext(r.Context(),
			`DELETE FROM penalties WHERE id=$1`, chi.URLParam(r, "penaltyID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "penalty not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
