package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meduaid/qb-portal/internal/policy"
)

func strptr(s string) *string { return &s }

func TestResolveCreateWriter(t *testing.T) {
	writer := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	admin := policy.Caller{ID: "a1", Role: policy.RoleAdmin}

	assert.Equal(t, "w1", policy.ResolveCreateWriter(writer, ""))
	// a writer cannot author on someone else's behalf
	assert.Equal(t, "w1", policy.ResolveCreateWriter(writer, "w2"))
	assert.Equal(t, "a1", policy.ResolveCreateWriter(admin, ""))
	assert.Equal(t, "w2", policy.ResolveCreateWriter(admin, "w2"))
}

func TestResolveCreateStatus(t *testing.T) {
	assert.Equal(t, policy.StatusDraft, policy.ResolveCreateStatus(policy.StatusDraft))
	assert.Equal(t, policy.StatusPending, policy.ResolveCreateStatus(""))
	assert.Equal(t, policy.StatusPending, policy.ResolveCreateStatus(policy.StatusApproved))
}

func TestOwnerUpdateDraft(t *testing.T) {
	owner := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	doc := policy.Document{Writer: "w1", Status: policy.StatusDraft}

	t.Run("status omitted stays draft", func(t *testing.T) {
		out, err := policy.ResolveUpdate(owner, doc, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusDraft, out.Status)
		assert.False(t, out.AdminFields)
	})

	t.Run("pending submits", func(t *testing.T) {
		out, err := policy.ResolveUpdate(owner, doc, strptr(policy.StatusPending), nil)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusPending, out.Status)
	})

	t.Run("other statuses coerced back to draft", func(t *testing.T) {
		for _, s := range []string{policy.StatusApproved, policy.StatusRejected, "bogus"} {
			out, err := policy.ResolveUpdate(owner, doc, strptr(s), nil)
			require.NoError(t, err, "status %q", s)
			assert.Equal(t, policy.StatusDraft, out.Status, "status %q", s)
		}
	})
}

func TestOwnerUpdateRejectedResubmits(t *testing.T) {
	owner := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	doc := policy.Document{Writer: "w1", Status: policy.StatusRejected, RejectionReason: "too vague"}

	// whatever the patch asks for, resubmission goes back to pending with the
	// prior rejection cleared
	for _, status := range []*string{nil, strptr(policy.StatusDraft), strptr(policy.StatusApproved)} {
		out, err := policy.ResolveUpdate(owner, doc, status, strptr("keep this"))
		require.NoError(t, err)
		assert.Equal(t, policy.StatusPending, out.Status)
		assert.Empty(t, out.RejectionReason)
	}
}

func TestOwnerUpdateLockedStates(t *testing.T) {
	owner := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	for _, status := range []string{policy.StatusPending, policy.StatusApproved} {
		doc := policy.Document{Writer: "w1", Status: status}
		_, err := policy.ResolveUpdate(owner, doc, nil, nil)
		assert.ErrorIs(t, err, policy.ErrForbidden, "status %q", status)
	}
}

func TestNonOwnerForbidden(t *testing.T) {
	other := policy.Caller{ID: "w2", Role: policy.RoleWriter}
	for _, status := range []string{policy.StatusDraft, policy.StatusPending, policy.StatusApproved, policy.StatusRejected} {
		doc := policy.Document{Writer: "w1", Status: status}
		_, err := policy.ResolveUpdate(other, doc, nil, nil)
		assert.ErrorIs(t, err, policy.ErrForbidden, "status %q", status)
	}
}

func TestUnknownRoleForbidden(t *testing.T) {
	_, err := policy.ResolveUpdate(policy.Caller{ID: "x", Role: "reviewer"},
		policy.Document{Writer: "x", Status: policy.StatusDraft}, nil, nil)
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestAdminUpdate(t *testing.T) {
	admin := policy.Caller{ID: "a1", Role: policy.RoleAdmin}

	t.Run("approve", func(t *testing.T) {
		doc := policy.Document{Writer: "w1", Status: policy.StatusPending}
		out, err := policy.ResolveUpdate(admin, doc, strptr(policy.StatusApproved), nil)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusApproved, out.Status)
		assert.True(t, out.AdminFields)
	})

	t.Run("invalid status", func(t *testing.T) {
		doc := policy.Document{Writer: "w1", Status: policy.StatusPending}
		_, err := policy.ResolveUpdate(admin, doc, strptr("archived"), nil)
		assert.ErrorIs(t, err, policy.ErrInvalidStatus)
	})

	t.Run("reject requires reason", func(t *testing.T) {
		doc := policy.Document{Writer: "w1", Status: policy.StatusPending}
		_, err := policy.ResolveUpdate(admin, doc, strptr(policy.StatusRejected), nil)
		assert.ErrorIs(t, err, policy.ErrRejectionReasonRequired)

		out, err := policy.ResolveUpdate(admin, doc, strptr(policy.StatusRejected), strptr("needs citations"))
		require.NoError(t, err)
		assert.Equal(t, "needs citations", out.RejectionReason)
	})

	t.Run("leaving rejected clears stale reason", func(t *testing.T) {
		doc := policy.Document{Writer: "w1", Status: policy.StatusRejected, RejectionReason: "old reason"}
		out, err := policy.ResolveUpdate(admin, doc, strptr(policy.StatusApproved), nil)
		require.NoError(t, err)
		assert.Empty(t, out.RejectionReason)
	})

	t.Run("re-save of rejected keeps stored reason", func(t *testing.T) {
		doc := policy.Document{Writer: "w1", Status: policy.StatusRejected, RejectionReason: "old reason"}
		out, err := policy.ResolveUpdate(admin, doc, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusRejected, out.Status)
		assert.Equal(t, "old reason", out.RejectionReason)
	})
}

func TestCanDelete(t *testing.T) {
	admin := policy.Caller{ID: "a1", Role: policy.RoleAdmin}
	owner := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	other := policy.Caller{ID: "w2", Role: policy.RoleWriter}

	for _, status := range []string{policy.StatusDraft, policy.StatusPending, policy.StatusApproved, policy.StatusRejected} {
		doc := policy.Document{Writer: "w1", Status: status}
		assert.NoError(t, policy.CanDelete(admin, doc), "admin, status %q", status)
		assert.ErrorIs(t, policy.CanDelete(other, doc), policy.ErrForbidden, "non-owner, status %q", status)
	}

	for _, status := range []string{policy.StatusDraft, policy.StatusPending, policy.StatusRejected} {
		assert.NoError(t, policy.CanDelete(owner, policy.Document{Writer: "w1", Status: status}), "owner, status %q", status)
	}
	assert.ErrorIs(t,
		policy.CanDelete(owner, policy.Document{Writer: "w1", Status: policy.StatusApproved}),
		policy.ErrForbidden)
}

func TestResolveListScope(t *testing.T) {
	writer := policy.Caller{ID: "w1", Role: policy.RoleWriter}
	admin := policy.Caller{ID: "a1", Role: policy.RoleAdmin}

	scope := policy.ResolveListScope(writer, "")
	assert.Equal(t, "w1", scope.Writer)
	assert.False(t, scope.ExcludeDraft)

	scope = policy.ResolveListScope(admin, "")
	assert.Empty(t, scope.Writer)
	assert.True(t, scope.ExcludeDraft)

	scope = policy.ResolveListScope(admin, policy.StatusDraft)
	assert.False(t, scope.ExcludeDraft)
}
