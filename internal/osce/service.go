package osce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meduaid/qb-portal/internal/audit"
	"github.com/meduaid/qb-portal/internal/policy"
	"github.com/meduaid/qb-portal/internal/scoring"
)

// Service applies the access policy and the scoring engine around the store.
// Every mutation is resolved fully in memory first and written in a single
// store call, so a validation failure never leaves a half-applied document.
type Service struct {
	store Store
	log   audit.Recorder
	lg    *logrus.Logger
}

func NewService(store Store, rec audit.Recorder, lg *logrus.Logger) *Service {
	if rec == nil {
		rec = audit.Discard
	}
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &Service{store: store, log: rec, lg: lg}
}

// Create validates the scoring structures, resolves owner and initial status,
// and persists a new station with its computed total.
func (s *Service) Create(ctx context.Context, caller policy.Caller, in CreateInput) (Station, error) {
	if err := scoring.ValidateScoringData(in.MarkingScheme, in.FollowUps, in.TotalMarks); err != nil {
		return Station{}, err
	}
	total, err := scoring.ComputeTotalMarks(in.MarkingScheme, in.FollowUps)
	if err != nil {
		return Station{}, err
	}
	now := time.Now().Unix()
	st := Station{
		ID:              uuid.NewString(),
		Writer:          policy.ResolveCreateWriter(caller, in.Writer),
		Status:          policy.ResolveCreateStatus(in.Status),
		Title:           in.Title,
		Category:        in.Category,
		Subject:         in.Subject,
		Topic:           in.Topic,
		CaseDescription: in.CaseDescription,
		Images:          in.Images,
		MarkingScheme:   in.MarkingScheme,
		FollowUps:       in.FollowUps,
		TotalMarks:      total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Put(ctx, st); err != nil {
		return Station{}, err
	}
	s.record(ctx, st.ID, caller.ID, audit.ActionCreated, nil)
	return st, nil
}

// Get returns one station. Writers may only read their own.
func (s *Service) Get(ctx context.Context, caller policy.Caller, id string) (Station, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return Station{}, err
	}
	if caller.Role != policy.RoleAdmin && st.Writer != caller.ID {
		return Station{}, policy.ErrForbidden
	}
	return st, nil
}

// Update resolves the patch through the access policy, merges it over the
// persisted station, re-runs the scoring engine when scoring fields changed,
// and persists the merged document.
func (s *Service) Update(ctx context.Context, caller policy.Caller, id string, p Patch) (Station, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Station{}, err
	}
	out, err := policy.ResolveUpdate(caller, policy.Document{
		Writer:          cur.Writer,
		Status:          cur.Status,
		RejectionReason: cur.RejectionReason,
	}, p.Status, p.RejectionReason)
	if err != nil {
		return Station{}, err
	}

	merged := cur
	applyContent(&merged, p)

	if p.MarkingScheme != nil || p.FollowUps != nil || p.TotalMarks != nil {
		if err := scoring.ValidateScoringData(merged.MarkingScheme, merged.FollowUps, p.TotalMarks); err != nil {
			return Station{}, err
		}
		total, err := scoring.ComputeTotalMarks(merged.MarkingScheme, merged.FollowUps)
		if err != nil {
			return Station{}, err
		}
		merged.TotalMarks = total
	}

	merged.Status = out.Status
	merged.RejectionReason = out.RejectionReason
	merged.UpdatedAt = time.Now().Unix()

	if err := s.store.Update(ctx, merged); err != nil {
		return Station{}, err
	}
	s.recordTransition(ctx, caller, cur, merged)
	return merged, nil
}

// Delete removes a station when the policy allows it.
func (s *Service) Delete(ctx context.Context, caller policy.Caller, id string) error {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDelete(caller, policy.Document{Writer: cur.Writer, Status: cur.Status}); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, id, caller.ID, audit.ActionDeleted, nil)
	return nil
}

// List returns the stations the caller may see, optionally narrowed by status.
func (s *Service) List(ctx context.Context, caller policy.Caller, statusFilter string, limit, offset int) ([]Station, error) {
	if statusFilter != "" && !policy.ValidStatus(statusFilter) {
		return nil, policy.ErrInvalidStatus
	}
	scope := policy.ResolveListScope(caller, statusFilter)
	return s.store.List(ctx, ListOpts{
		Writer:       scope.Writer,
		Status:       statusFilter,
		ExcludeDraft: scope.ExcludeDraft,
		Limit:        limit,
		Offset:       offset,
	})
}

func applyContent(st *Station, p Patch) {
	if p.Title != nil {
		st.Title = *p.Title
	}
	if p.Category != nil {
		st.Category = *p.Category
	}
	if p.Subject != nil {
		st.Subject = *p.Subject
	}
	if p.Topic != nil {
		st.Topic = *p.Topic
	}
	if p.CaseDescription != nil {
		st.CaseDescription = *p.CaseDescription
	}
	if p.Images != nil {
		st.Images = *p.Images
	}
	if p.MarkingScheme != nil {
		st.MarkingScheme = *p.MarkingScheme
	}
	if p.FollowUps != nil {
		st.FollowUps = *p.FollowUps
	}
}

func (s *Service) recordTransition(ctx context.Context, caller policy.Caller, before, after Station) {
	if before.Status == after.Status {
		return
	}
	var action string
	var data map[string]string
	switch after.Status {
	case policy.StatusApproved:
		action = audit.ActionApproved
	case policy.StatusRejected:
		action = audit.ActionRejected
		data = map[string]string{"reason": after.RejectionReason}
	case policy.StatusPending:
		if before.Status == policy.StatusRejected {
			action = audit.ActionResubmitted
		}
	}
	if action == "" {
		return
	}
	s.record(ctx, after.ID, caller.ID, action, data)
}

func (s *Service) record(ctx context.Context, id, actor, action string, data map[string]string) {
	dataJSON := ""
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.log.Record(ctx, audit.Entry{
		ContentType: "station",
		ContentID:   id,
		Actor:       actor,
		Action:      action,
		DataJSON:    dataJSON,
	})
	if err != nil {
		s.lg.WithError(err).WithField("station", id).Warn("review log append failed")
	}
}

// Summary is the list-view projection of a station.
type Summary struct {
	ID         string  `json:"id"`
	Writer     string  `json:"writer"`
	Status     string  `json:"status"`
	Title      string  `json:"title"`
	Category   string  `json:"category,omitempty"`
	TotalMarks float64 `json:"total_marks"`
	CreatedAt  int64   `json:"created_at"`
}

// Summarize projects stations for listings.
func Summarize(in []Station) []Summary {
	out := make([]Summary, 0, len(in))
	for _, st := range in {
		out = append(out, Summary{
			ID:         st.ID,
			Writer:     st.Writer,
			Status:     st.Status,
			Title:      st.Title,
			Category:   st.Category,
			TotalMarks: st.TotalMarks,
			CreatedAt:  st.CreatedAt,
		})
	}
	return out
}
