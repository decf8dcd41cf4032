package sba_test

import (
	"context"
	"errors"
	"testing"

	"github.com/meduaid/qb-portal/internal/policy"
	"github.com/meduaid/qb-portal/internal/sba"
)

var (
	writer = policy.Caller{ID: "w1", Role: policy.RoleWriter}
	rival  = policy.Caller{ID: "w2", Role: policy.RoleWriter}
	admin  = policy.Caller{ID: "a1", Role: policy.RoleAdmin}
)

func newTestService() *sba.Service {
	return sba.NewService(sba.NewInMemoryStore(), nil, nil)
}

func baseInput() sba.CreateInput {
	return sba.CreateInput{
		Question: "Which drug is first line for this presentation?",
		Choices: []sba.Choice{
			{Label: "A", Text: "Aspirin"},
			{Label: "B", Text: "Bisoprolol"},
			{Label: "C", Text: "Clopidogrel"},
		},
		CorrectAnswer: "B",
		Subject:       "Pharmacology",
	}
}

func mustCreate(t *testing.T, svc *sba.Service, caller policy.Caller, in sba.CreateInput) sba.Submission {
	t.Helper()
	sub, err := svc.Create(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return sub
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService()
	sub := mustCreate(t, svc, writer, baseInput())
	if sub.Writer != "w1" {
		t.Fatalf("expected writer w1, got %s", sub.Writer)
	}
	if sub.Status != policy.StatusPending {
		t.Fatalf("expected pending, got %s", sub.Status)
	}
}

func TestCreateRejectsUnknownAnswer(t *testing.T) {
	svc := newTestService()
	in := baseInput()
	in.CorrectAnswer = "E"
	if _, err := svc.Create(context.Background(), writer, in); !errors.Is(err, sba.ErrCorrectAnswerUnknown) {
		t.Fatalf("expected ErrCorrectAnswerUnknown, got %v", err)
	}
}

func TestUpdateRevalidatesMergedAnswer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := baseInput()
	in.Status = policy.StatusDraft
	sub := mustCreate(t, svc, writer, in)

	// Replacing the choices without choice B orphans the stored answer.
	twoChoices := []sba.Choice{
		{Label: "A", Text: "Aspirin"},
		{Label: "C", Text: "Clopidogrel"},
	}
	if _, err := svc.Update(ctx, writer, sub.ID, sba.Patch{Choices: &twoChoices}); !errors.Is(err, sba.ErrCorrectAnswerUnknown) {
		t.Fatalf("expected ErrCorrectAnswerUnknown, got %v", err)
	}

	// Patching the answer in the same request keeps the pair consistent.
	answer := "C"
	got, err := svc.Update(ctx, writer, sub.ID, sba.Patch{Choices: &twoChoices, CorrectAnswer: &answer})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.CorrectAnswer != "C" || len(got.Choices) != 2 {
		t.Fatalf("merged update not applied: %q %d", got.CorrectAnswer, len(got.Choices))
	}
}

func TestOwnerLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := baseInput()
	in.Status = policy.StatusDraft
	sub := mustCreate(t, svc, writer, in)

	pending := policy.StatusPending
	got, err := svc.Update(ctx, writer, sub.ID, sba.Patch{Status: &pending})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got.Status != policy.StatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}

	question := "late edit"
	if _, err := svc.Update(ctx, writer, sub.ID, sba.Patch{Question: &question}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("pending submissions are locked for writers, got %v", err)
	}

	rejected := policy.StatusRejected
	reason := "ambiguous stem"
	if _, err := svc.Update(ctx, admin, sub.ID, sba.Patch{Status: &rejected, RejectionReason: &reason}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	got, err = svc.Update(ctx, writer, sub.ID, sba.Patch{Question: &question})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if got.Status != policy.StatusPending || got.RejectionReason != "" {
		t.Fatalf("resubmit should force pending and clear the reason, got %s %q", got.Status, got.RejectionReason)
	}
}

func TestNonOwnerAccess(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sub := mustCreate(t, svc, writer, baseInput())

	if _, err := svc.Get(ctx, rival, sub.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on read, got %v", err)
	}
	question := "hijack"
	if _, err := svc.Update(ctx, rival, sub.ID, sba.Patch{Question: &question}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}
	if err := svc.Delete(ctx, rival, sub.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
}

func TestDeleteApprovedOwnerForbidden(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sub := mustCreate(t, svc, writer, baseInput())

	approved := policy.StatusApproved
	if _, err := svc.Update(ctx, admin, sub.ID, sba.Patch{Status: &approved}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := svc.Delete(ctx, writer, sub.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner on approved, got %v", err)
	}
	if err := svc.Delete(ctx, admin, sub.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestListScoping(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	draftIn := baseInput()
	draftIn.Status = policy.StatusDraft
	mustCreate(t, svc, writer, draftIn)
	mustCreate(t, svc, writer, baseInput())
	mustCreate(t, svc, rival, baseInput())

	own, err := svc.List(ctx, writer, "", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("writer should see own 2 submissions, got %d", len(own))
	}

	all, err := svc.List(ctx, admin, "", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin default listing should hide drafts, got %d", len(all))
	}

	drafts, err := svc.List(ctx, admin, policy.StatusDraft, 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("admin draft filter should surface the draft, got %d", len(drafts))
	}
}
