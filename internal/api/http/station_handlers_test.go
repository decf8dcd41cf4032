package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/meduaid/qb-portal/internal/osce"
	"github.com/meduaid/qb-portal/internal/policy"
	"github.com/meduaid/qb-portal/internal/rbac"
	"github.com/meduaid/qb-portal/internal/scoring"
)

func newStationRouter() (*chi.Mux, *osce.Service) {
	svc := osce.NewService(osce.NewInMemoryStore(), nil, nil)
	r := chi.NewRouter()
	r.Post("/stations", CreateStationHandler(svc))
	r.Get("/stations", ListStationsHandler(svc))
	r.Get("/stations/{stationID}", GetStationHandler(svc))
	r.Patch("/stations/{stationID}", UpdateStationHandler(svc))
	r.Delete("/stations/{stationID}", DeleteStationHandler(svc))
	return r, svc
}

func asCaller(req *http.Request, id, role string) *http.Request {
	ctx := rbac.WithSubject(req.Context(), id)
	ctx = rbac.WithRole(ctx, role)
	return req.WithContext(ctx)
}

const stationBody = `{
	"title": "Chest pain history",
	"marking_scheme": [
		{"section": "A", "items": [{"desc": "x", "score": 2}, {"desc": "y", "score": 3}]}
	],
	"follow_ups": [
		{"question": "q1", "answers": ["a"], "score": 1}
	]
}`

func createStation(t *testing.T, r *chi.Mux, body string) osce.Station {
	t.Helper()
	req := asCaller(httptest.NewRequest(http.MethodPost, "/stations", strings.NewReader(body)), "w1", "writer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var st osce.Station
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return st
}

func TestCreateStationEndpoint(t *testing.T) {
	r, _ := newStationRouter()
	st := createStation(t, r, stationBody)
	if st.TotalMarks != 6 {
		t.Fatalf("expected total 6, got %v", st.TotalMarks)
	}
	if st.Writer != "w1" || st.Status != policy.StatusPending {
		t.Fatalf("unexpected station: %s %s", st.Writer, st.Status)
	}
}

func TestCreateStationValidation(t *testing.T) {
	r, _ := newStationRouter()

	req := asCaller(httptest.NewRequest(http.MethodPost, "/stations", strings.NewReader(`{`)), "w1", "writer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", rec.Code)
	}

	// title is required
	req = asCaller(httptest.NewRequest(http.MethodPost, "/stations", strings.NewReader(`{"marking_scheme": []}`)), "w1", "writer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing title: expected 400, got %d", rec.Code)
	}

	// scoring failures surface their message
	body := `{"title": "t", "marking_scheme": [{"section": "A", "items": [{"desc": "x", "score": -1}]}]}`
	req = asCaller(httptest.NewRequest(http.MethodPost, "/stations", strings.NewReader(body)), "w1", "writer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative score: expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "x") {
		t.Fatalf("error should name the offending item: %s", rec.Body.String())
	}
}

func TestStationAccessCodes(t *testing.T) {
	r, _ := newStationRouter()
	st := createStation(t, r, stationBody)

	req := asCaller(httptest.NewRequest(http.MethodGet, "/stations/"+st.ID, nil), "w2", "writer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner read: expected 403, got %d", rec.Code)
	}

	req = asCaller(httptest.NewRequest(http.MethodGet, "/stations/missing", nil), "a1", "admin")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id: expected 404, got %d", rec.Code)
	}

	// writer may not edit a pending station
	req = asCaller(httptest.NewRequest(http.MethodPatch, "/stations/"+st.ID, strings.NewReader(`{"title": "late"}`)), "w1", "writer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending edit: expected 403, got %d", rec.Code)
	}
}

func TestStationReviewEndpointFlow(t *testing.T) {
	r, _ := newStationRouter()
	st := createStation(t, r, stationBody)

	body := `{"status": "rejected", "rejection_reason": "needs work"}`
	req := asCaller(httptest.NewRequest(http.MethodPatch, "/stations/"+st.ID, strings.NewReader(body)), "a1", "admin")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// rejecting without a reason is a validation error
	st2 := createStation(t, r, stationBody)
	req = asCaller(httptest.NewRequest(http.MethodPatch, "/stations/"+st2.ID, strings.NewReader(`{"status": "rejected"}`)), "a1", "admin")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason: expected 400, got %d", rec.Code)
	}

	// the owner's edit resubmits
	req = asCaller(httptest.NewRequest(http.MethodPatch, "/stations/"+st.ID, strings.NewReader(`{"title": "v2"}`)), "w1", "writer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got osce.Station
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != policy.StatusPending || got.RejectionReason != "" {
		t.Fatalf("resubmit state: %s %q", got.Status, got.RejectionReason)
	}
}

func TestListStationsEndpoint(t *testing.T) {
	r, svc := newStationRouter()
	createStation(t, r, stationBody)
	// a second writer's station, created through the service directly
	_, err := svc.Create(context.Background(), policy.Caller{ID: "w2", Role: policy.RoleWriter}, osce.CreateInput{
		Title: "Other",
		MarkingScheme: []scoring.Section{
			{Section: "A", Items: []scoring.Item{{Desc: "x", Score: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("create second station: %v", err)
	}

	req := asCaller(httptest.NewRequest(http.MethodGet, "/stations", nil), "w1", "writer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []osce.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Writer != "w1" {
		t.Fatalf("writer listing should only hold own stations: %+v", list)
	}

	req = asCaller(httptest.NewRequest(http.MethodGet, "/stations?status=archived", nil), "a1", "admin")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", rec.Code)
	}
}
