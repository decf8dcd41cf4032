package sba

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meduaid/qb-portal/internal/audit"
	"github.com/meduaid/qb-portal/internal/policy"
)

// Service applies the shared access policy around the submission store. The
// flow mirrors the station service minus the scoring engine.
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

func (s *Service) Create(ctx context.Context, caller policy.Caller, in CreateInput) (Submission, error) {
	if !answerMatchesChoice(in.CorrectAnswer, in.Choices) {
		return Submission{}, ErrCorrectAnswerUnknown
	}
	now := time.Now().Unix()
	sub := Submission{
		ID:            uuid.NewString(),
		Writer:        policy.ResolveCreateWriter(caller, in.Writer),
		Status:        policy.ResolveCreateStatus(in.Status),
		Question:      in.Question,
		Choices:       in.Choices,
		CorrectAnswer: in.CorrectAnswer,
		Explanation:   in.Explanation,
		Category:      in.Category,
		Subject:       in.Subject,
		Topic:         in.Topic,
		Images:        in.Images,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Put(ctx, sub); err != nil {
		return Submission{}, err
	}
	s.record(ctx, sub.ID, caller.ID, audit.ActionCreated, nil)
	return sub, nil
}

func (s *Service) Get(ctx context.Context, caller policy.Caller, id string) (Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if caller.Role != policy.RoleAdmin && sub.Writer != caller.ID {
		return Submission{}, policy.ErrForbidden
	}
	return sub, nil
}

func (s *Service) Update(ctx context.Context, caller policy.Caller, id string, p Patch) (Submission, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	out, err := policy.ResolveUpdate(caller, policy.Document{
		Writer:          cur.Writer,
		Status:          cur.Status,
		RejectionReason: cur.RejectionReason,
	}, p.Status, p.RejectionReason)
	if err != nil {
		return Submission{}, err
	}

	merged := cur
	applyContent(&merged, p)
	if !answerMatchesChoice(merged.CorrectAnswer, merged.Choices) {
		return Submission{}, ErrCorrectAnswerUnknown
	}

	merged.Status = out.Status
	merged.RejectionReason = out.RejectionReason
	merged.UpdatedAt = time.Now().Unix()

	if err := s.store.Update(ctx, merged); err != nil {
		return Submission{}, err
	}
	s.recordTransition(ctx, caller, cur, merged)
	return merged, nil
}

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

func (s *Service) List(ctx context.Context, caller policy.Caller, statusFilter string, limit, offset int) ([]Submission, error) {
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

func applyContent(sub *Submission, p Patch) {
	if p.Question != nil {
		sub.Question = *p.Question
	}
	if p.Choices != nil {
		sub.Choices = *p.Choices
	}
	if p.CorrectAnswer != nil {
		sub.CorrectAnswer = *p.CorrectAnswer
	}
	if p.Explanation != nil {
		sub.Explanation = *p.Explanation
	}
	if p.Category != nil {
		sub.Category = *p.Category
	}
	if p.Subject != nil {
		sub.Subject = *p.Subject
	}
	if p.Topic != nil {
		sub.Topic = *p.Topic
	}
	if p.Images != nil {
		sub.Images = *p.Images
	}
}

func (s *Service) recordTransition(ctx context.Context, caller policy.Caller, before, after Submission) {
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
		ContentType: "submission",
		ContentID:   id,
		Actor:       actor,
		Action:      action,
		DataJSON:    dataJSON,
	})
	if err != nil {
		s.lg.WithError(err).WithField("submission", id).Warn("review log append failed")
	}
}
