package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

func TestCreateEmployeeValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateEmployeeRequest)
	}{
		{"missing full name", func(r *models.CreateEmployeeRequest) { r.FullName = "" }},
		{"missing email", func(r *models.CreateEmployeeRequest) { r.Email = "" }},
		{"missing designation", func(r *models.CreateEmployeeRequest) { r.Designation = "" }},
		{"missing phone", func(r *models.CreateEmployeeRequest) { r.Phone = "" }},
		{"invalid email", func(r *models.CreateEmployeeRequest) { r.Email = "not-an-email" }},
		{"negative salary", func(r *models.CreateEmployeeRequest) { r.Salary = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newEmployeeRequest("ada@analytical.test")
			tt.mutate(&req)
			_, err := env.onboarding.CreateEmployee(env.org.ID, req, env.admin.ID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateEmployeePlaceholderAccount(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.OnboardingPending, result.Onboarding.Status)
	assert.Equal(t, env.admin.ID, result.Onboarding.CreatedBy)

	// 占位账号在完成入职前不可登录
	employee, err := env.db.GetUserByID(result.Employee.ID)
	require.NoError(t, err)
	assert.False(t, employee.IsActive)
	assert.Equal(t, models.RoleEmployee, employee.Role)

	// 明文token不落库
	assert.NotEqual(t, result.Token, result.Onboarding.Token)
}

func TestCreateEmployeeConflicts(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	// 进行中的入职挡住重复发起
	_, err = env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// 激活账号同样挡住
	_, err = env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("hr@analytical.test"), env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetDetailsIncludesBranding(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	details, err := env.onboarding.GetDetails(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", details.Branding.CompanyName)
	assert.Equal(t, "#336699", details.Branding.Theme.PrimaryColor)

	// 未知token统一NotFound，不区分"错token"和"没记录"
	_, err = env.onboarding.GetDetails("deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptOfferChainsEmploymentForm(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	accepted, err := env.onboarding.AcceptOffer(result.Token)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingAccepted, accepted.Onboarding.Status)
	assert.NotNil(t, accepted.Onboarding.RespondedAt)
	require.NotEmpty(t, accepted.EmploymentFormToken)

	// 链出来的表单token立即可用
	details, err := env.forms.GetByToken(accepted.EmploymentFormToken)
	require.NoError(t, err)
	assert.Equal(t, models.FormDraft, details.Form.Status)
	assert.Equal(t, "ada@analytical.test", details.Form.EmployeeEmail)

	// 二次接受被挡
	_, err = env.onboarding.AcceptOffer(result.Token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRejectOfferKeepsAccountInactive(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	ob, err := env.onboarding.RejectOffer(result.Token, "took another offer")
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingRejected, ob.Status)
	assert.Equal(t, "took another offer", ob.RejectionReason)

	employee, err := env.db.GetUserByID(result.Employee.ID)
	require.NoError(t, err)
	assert.False(t, employee.IsActive)
}

func TestCompleteOnboardingActivatesAccount(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)
	_, err = env.onboarding.AcceptOffer(result.Token)
	require.NoError(t, err)

	// 完成入职前的校验
	_, err = env.onboarding.CompleteOnboarding(result.Token, models.ProfileCompletion{Password: "short", Github: "g"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.onboarding.CompleteOnboarding(result.Token, models.ProfileCompletion{Password: "long-enough"})
	assert.ErrorIs(t, err, ErrValidation)

	ob, err := env.onboarding.CompleteOnboarding(result.Token, models.ProfileCompletion{
		Password: "engine-no-1",
		Github:   "https://github.com/ada",
		Address:  models.Address{City: "London"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingCompleted, ob.Status)
	assert.NotNil(t, ob.CompletedAt)

	employee, err := env.db.GetUserByID(result.Employee.ID)
	require.NoError(t, err)
	assert.True(t, employee.IsActive)
	assert.True(t, employee.IsEmailVerified)
	assert.Equal(t, "https://github.com/ada", employee.SocialLinks.Github)
	assert.Equal(t, "London", employee.Address.City)
}

func TestLazyExpiryIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	ob := result.Onboarding
	ob.TokenExpiry = time.Now().Add(-time.Hour)
	require.NoError(t, env.db.UpdateOnboarding(ob))

	_, err = env.onboarding.GetDetails(result.Token)
	assert.ErrorIs(t, err, ErrExpired)

	// 过期状态已落库
	stored, err := env.db.GetOnboardingByID(ob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingExpired, stored.Status)

	// 再读仍然是Expired，不会重复写
	_, err = env.onboarding.GetDetails(result.Token)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = env.onboarding.AcceptOffer(result.Token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRevokeOnboarding(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	ob, err := env.onboarding.RevokeOnboarding(result.Onboarding.ID, env.org.ID, "position closed", env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingRevoked, ob.Status)
	assert.Equal(t, env.admin.ID, ob.RevokedBy)

	// 撤回后token持有者被拒
	_, err = env.onboarding.GetDetails(result.Token)
	assert.ErrorIs(t, err, ErrForbidden)

	// 终态不可再撤回
	_, err = env.onboarding.RevokeOnboarding(result.Onboarding.ID, env.org.ID, "again", env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRevokeScopedToOrganization(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	_, err = env.onboarding.RevokeOnboarding(result.Onboarding.ID, "other-org", "nope", env.admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResendRotatesToken(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	resent, err := env.onboarding.ResendOfferLetter(result.Onboarding.ID, env.org.ID)
	require.NoError(t, err)
	assert.NotEqual(t, result.Token, resent.Token)

	// 旧token随哈希覆盖立即失效
	_, err = env.onboarding.GetDetails(result.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.onboarding.GetDetails(resent.Token)
	assert.NoError(t, err)
}

func TestEnsureEmploymentForm(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	// 接受前不可用
	_, err = env.onboarding.EnsureEmploymentForm(result.Token)
	assert.ErrorIs(t, err, ErrConflict)

	accepted, err := env.onboarding.AcceptOffer(result.Token)
	require.NoError(t, err)

	// 已有可编辑表单：轮换其token，旧的失效
	ensured, err := env.onboarding.EnsureEmploymentForm(result.Token)
	require.NoError(t, err)
	assert.NotEqual(t, accepted.EmploymentFormToken, ensured.EmploymentFormToken)

	_, err = env.forms.GetByToken(accepted.EmploymentFormToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.forms.GetByToken(ensured.EmploymentFormToken)
	assert.NoError(t, err)
}

func TestCountByStatus(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)
	_, err = env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("charles@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	_, err = env.onboarding.AcceptOffer(first.Token)
	require.NoError(t, err)

	counts, err := env.onboarding.CountByStatus(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["accepted"])
	assert.Equal(t, 1, counts["pending"])
}
