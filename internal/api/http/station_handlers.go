package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meduaid/qb-portal/internal/osce"
)

var validate = validator.New()

func CreateStationHandler(svc *osce.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in osce.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st, err := svc.Create(r.Context(), callerFromContext(r), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

func GetStationHandler(svc *osce.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Get(r.Context(), callerFromContext(r), chi.URLParam(r, "stationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func UpdateStationHandler(svc *osce.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p osce.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		st, err := svc.Update(r.Context(), callerFromContext(r), chi.URLParam(r, "stationID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func DeleteStationHandler(svc *osce.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), callerFromContext(r), chi.URLParam(r, "stationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListStationsHandler(svc *osce.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
		list, err := svc.List(r.Context(), callerFromContext(r), status, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, osce.Summarize(list))
	}
}
