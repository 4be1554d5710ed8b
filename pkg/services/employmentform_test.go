package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

func TestFormCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.forms.Create(env.org.ID, "", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = env.forms.Create(env.org.ID, "not-an-email", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormSubmitValidation(t *testing.T) {
	env := newTestEnv(t)

	_, token, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*models.EmploymentFormSubmission)
	}{
		{"missing legal name", func(s *models.EmploymentFormSubmission) { s.PersonalInfo.LegalName = "" }},
		{"missing cnic", func(s *models.EmploymentFormSubmission) { s.CnicInfo.CnicNumber = "" }},
		{"missing phone", func(s *models.EmploymentFormSubmission) { s.ContactInfo.Phone = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := validSubmission()
			tt.mutate(&submission)
			_, err := env.forms.Submit(token, submission)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFormSubmitMovesToPendingReview(t *testing.T) {
	env := newTestEnv(t)

	_, token, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)

	form, err := env.forms.Submit(token, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, models.FormPendingReview, form.Status)
	assert.NotNil(t, form.SubmittedAt)
	assert.Empty(t, form.RevisionFields)

	// 提交后token持有者只拿到"审核中"的Conflict
	_, err = env.forms.GetByToken(token)
	assert.ErrorIs(t, err, ErrConflict)

	// 重复提交同样Conflict
	_, err = env.forms.Submit(token, validSubmission())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFormSubmitReconcilesOnboardingAndUser(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)
	accepted, err := env.onboarding.AcceptOffer(created.Token)
	require.NoError(t, err)

	_, err = env.forms.Submit(accepted.EmploymentFormToken, validSubmission())
	require.NoError(t, err)

	// 接受中的入职被推进到completed
	ob, err := env.db.GetOnboardingByID(created.Onboarding.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingCompleted, ob.Status)

	// 占位账号用表单数据激活
	user, err := env.db.GetUserByEmail(env.org.ID, "ada@analytical.test")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "https://github.com/ada", user.SocialLinks.Github)
	assert.Equal(t, "Lahore", user.Address.City)
}

func TestFormReviewTransitions(t *testing.T) {
	env := newTestEnv(t)

	form, token, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)

	// draft 不能直接审核
	_, err = env.forms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "approved"}, env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.forms.Submit(token, validSubmission())
	require.NoError(t, err)

	// 非法状态
	_, err = env.forms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "maybe"}, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	reviewed, err := env.forms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "approved", Notes: "all good"}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FormApproved, reviewed.Status)
	assert.Equal(t, env.admin.ID, reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	// 审核后不可二次审核
	_, err = env.forms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "rejected"}, env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFormRequestRevisionRotatesToken(t *testing.T) {
	env := newTestEnv(t)

	form, token, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)
	_, err = env.forms.Submit(token, validSubmission())
	require.NoError(t, err)

	// 必须列出需要修改的字段
	_, err = env.forms.RequestRevision(form.ID, env.org.ID, models.RevisionRequest{}, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	revised, err := env.forms.RequestRevision(form.ID, env.org.ID, models.RevisionRequest{
		Notes:  "cnic image unreadable",
		Fields: []string{"cnic_info.cnic_front_image"},
	}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FormNeedsRevision, revised.Status)
	assert.Equal(t, []string{"cnic_info.cnic_front_image"}, revised.RevisionFields)

	// 旧token失效；候选人拿到新token可以重新提交
	_, err = env.forms.Submit(token, validSubmission())
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := env.db.GetEmploymentFormByID(form.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status.IsEditable())
}

func TestFormResubmitClearsRevisionFields(t *testing.T) {
	env := newTestEnv(t)

	form, token, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)
	_, err = env.forms.Submit(token, validSubmission())
	require.NoError(t, err)
	_, err = env.forms.RequestRevision(form.ID, env.org.ID, models.RevisionRequest{Fields: []string{"personal_info"}}, env.admin.ID)
	require.NoError(t, err)

	// needs_revision 的表单仍可编辑；通过 ensure 流程拿新token
	editable, err := env.forms.findEditableByEmail(env.org.ID, "ada@analytical.test")
	require.NoError(t, err)
	require.NotNil(t, editable)

	newToken, err := env.forms.rotateToken(editable)
	require.NoError(t, err)

	resubmitted, err := env.forms.Submit(newToken, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, models.FormPendingReview, resubmitted.Status)
	assert.Empty(t, resubmitted.RevisionFields)
}

func TestFormApprovalAutoChainsContract(t *testing.T) {
	env := newTestEnv(t)

	// 自动建合同开关开启的服务实例
	autoForms := NewEmploymentFormService(env.db, env.orgs, env.contracts, env.notify, true)

	form, token, err := autoForms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)
	_, err = autoForms.Submit(token, validSubmission())
	require.NoError(t, err)

	_, err = autoForms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "approved"}, env.admin.ID)
	require.NoError(t, err)

	contracts, total, err := env.db.ListContracts(database.ListQuery{OrganizationID: env.org.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.ContractDraft, contracts[0].Status)
	assert.Equal(t, form.ID, contracts[0].EmploymentFormID)
}

func TestFormScopedToOrganization(t *testing.T) {
	env := newTestEnv(t)

	form, _, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)

	_, err = env.forms.GetForm(form.ID, "other-org")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.forms.GetForm("missing", env.org.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
