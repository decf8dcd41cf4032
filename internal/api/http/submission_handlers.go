package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meduaid/qb-portal/internal/sba"
)

func CreateSubmissionHandler(svc *sba.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in sba.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sub, err := svc.Create(r.Context(), callerFromContext(r), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func GetSubmissionHandler(svc *sba.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.Get(r.Context(), callerFromContext(r), chi.URLParam(r, "submissionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func UpdateSubmissionHandler(svc *sba.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p sba.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub, err := svc.Update(r.Context(), callerFromContext(r), chi.URLParam(r, "submissionID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func DeleteSubmissionHandler(svc *sba.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), callerFromContext(r), chi.URLParam(r, "submissionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListSubmissionsHandler(svc *sba.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
		list, err := svc.List(r.Context(), callerFromContext(r), status, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
