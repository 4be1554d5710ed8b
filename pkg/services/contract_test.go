package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// approvedForm 制造一张已审批的表单作为合同前置
func approvedForm(t *testing.T, env *testEnv, email string) *models.EmploymentForm {
	t.Helper()
	form, token, err := env.forms.Create(env.org.ID, email, "")
	require.NoError(t, err)
	_, err = env.forms.Submit(token, validSubmission())
	require.NoError(t, err)
	reviewed, err := env.forms.Review(form.ID, env.org.ID, models.ReviewRequest{Status: "approved"}, env.admin.ID)
	require.NoError(t, err)
	return reviewed
}

func contractRequest(formID string) models.ContractCreateRequest {
	return models.ContractCreateRequest{
		EmploymentFormID: formID,
		ContractDetails: models.ContractDetails{
			Position:       "Software Engineer",
			Department:     "Engineering",
			EmploymentType: "full-time",
			StartDate:      time.Now().AddDate(0, 1, 0),
			Compensation:   models.Compensation{BaseSalary: 120000, PaymentFrequency: "monthly"},
		},
	}
}

func TestContractCreateRequiresApprovedForm(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.contracts.Create(env.org.ID, models.ContractCreateRequest{}, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = env.contracts.Create(env.org.ID, contractRequest("missing-form"), env.admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 未审批的表单是依赖失败
	draft, _, err := env.forms.Create(env.org.ID, "ada@analytical.test", "")
	require.NoError(t, err)
	_, _, err = env.contracts.Create(env.org.ID, contractRequest(draft.ID), env.admin.ID)
	assert.ErrorIs(t, err, ErrDependency)
}

func TestContractSendRotatesSigningToken(t *testing.T) {
	env := newTestEnv(t)
	form := approvedForm(t, env, "ada@analytical.test")

	contract, createToken, err := env.contracts.Create(env.org.ID, contractRequest(form.ID), env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractDraft, contract.Status)

	sent, sendToken, err := env.contracts.Send(contract.ID, env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractSent, sent.Status)
	assert.NotNil(t, sent.SentAt)
	assert.NotEqual(t, createToken, sendToken)

	// 创建时的token已被轮换掉
	_, err = env.contracts.GetByToken(createToken)
	assert.ErrorIs(t, err, ErrNotFound)
	view, err := env.contracts.GetByToken(sendToken)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", view.Branding.CompanyName)

	// sent 状态不能再send
	_, _, err = env.contracts.Send(contract.ID, env.org.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestContractSignLifecycle(t *testing.T) {
	env := newTestEnv(t)
	form := approvedForm(t, env, "ada@analytical.test")

	contract, _, err := env.contracts.Create(env.org.ID, contractRequest(form.ID), env.admin.ID)
	require.NoError(t, err)
	_, token, err := env.contracts.Send(contract.ID, env.org.ID)
	require.NoError(t, err)

	var signedEvents []Event
	env.events.Subscribe(EventContractSigned, func(e Event) error {
		signedEvents = append(signedEvents, e)
		return nil
	})

	// 签名载荷校验
	_, err = env.contracts.Sign(token, models.SignatureRequest{EmployeeName: "Ada Lovelace"})
	assert.ErrorIs(t, err, ErrValidation)

	signed, err := env.contracts.Sign(token, models.SignatureRequest{
		EmployeeName:      "Ada Lovelace",
		EmployeeEmail:     "ada@analytical.test",
		EmployeeSignature: "data:image/png;base64,xyz",
		IPAddress:         "203.0.113.7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractSigned, signed.Status)
	require.Len(t, signed.Signatures, 1)
	assert.Equal(t, "employee", signed.Signatures[0].SignedBy)
	assert.Equal(t, "203.0.113.7", signed.Signatures[0].IPAddress)

	require.Len(t, signedEvents, 1)
	assert.Equal(t, contract.ID, signedEvents[0].EntityID)

	// 已签署的token解析直接Conflict
	_, err = env.contracts.GetByToken(token)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = env.contracts.Sign(token, models.SignatureRequest{
		EmployeeName: "Ada", EmployeeSignature: "again",
	})
	assert.ErrorIs(t, err, ErrConflict)

	// signed → completed → 不可终止
	completed, err := env.contracts.Complete(contract.ID, env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractCompleted, completed.Status)
	_, err = env.contracts.Terminate(contract.ID, env.org.ID, "changed mind")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestContractSignLinksEmployeeAccount(t *testing.T) {
	env := newTestEnv(t)

	// 走完整入职链，让员工账号存在
	created, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)
	accepted, err := env.onboarding.AcceptOffer(created.Token)
	require.NoError(t, err)
	submitted, err := env.forms.Submit(accepted.EmploymentFormToken, validSubmission())
	require.NoError(t, err)
	_, err = env.forms.Review(submitted.ID, env.org.ID, models.ReviewRequest{Status: "approved"}, env.admin.ID)
	require.NoError(t, err)

	contract, _, err := env.contracts.Create(env.org.ID, contractRequest(submitted.ID), env.admin.ID)
	require.NoError(t, err)
	_, token, err := env.contracts.Send(contract.ID, env.org.ID)
	require.NoError(t, err)

	signed, err := env.contracts.Sign(token, models.SignatureRequest{
		EmployeeName:      "Ada Lovelace",
		EmployeeEmail:     "ada@analytical.test",
		EmployeeSignature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, created.Employee.ID, signed.EmployeeID)
}

func TestContractTerminateFromSent(t *testing.T) {
	env := newTestEnv(t)
	form := approvedForm(t, env, "ada@analytical.test")

	contract, _, err := env.contracts.Create(env.org.ID, contractRequest(form.ID), env.admin.ID)
	require.NoError(t, err)
	_, _, err = env.contracts.Send(contract.ID, env.org.ID)
	require.NoError(t, err)

	terminated, err := env.contracts.Terminate(contract.ID, env.org.ID, "position withdrawn")
	require.NoError(t, err)
	assert.Equal(t, models.ContractTerminated, terminated.Status)
	assert.Equal(t, "position withdrawn", terminated.TerminationReason)
	assert.NotNil(t, terminated.TerminatedAt)

	_, err = env.contracts.Terminate(contract.ID, env.org.ID, "again")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestContractExpiredSigningLink(t *testing.T) {
	env := newTestEnv(t)
	form := approvedForm(t, env, "ada@analytical.test")

	contract, _, err := env.contracts.Create(env.org.ID, contractRequest(form.ID), env.admin.ID)
	require.NoError(t, err)
	_, token, err := env.contracts.Send(contract.ID, env.org.ID)
	require.NoError(t, err)

	stored, err := env.db.GetContractByID(contract.ID)
	require.NoError(t, err)
	stored.TokenExpiry = time.Now().Add(-time.Hour)
	require.NoError(t, env.db.UpdateContract(stored))

	_, err = env.contracts.GetByToken(token)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = env.contracts.Sign(token, models.SignatureRequest{EmployeeName: "Ada", EmployeeSignature: "sig"})
	assert.ErrorIs(t, err, ErrExpired)
}
