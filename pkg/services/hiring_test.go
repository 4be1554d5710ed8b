package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

func newCandidate(email string) *models.Candidate {
	return &models.Candidate{
		Name:           "Ada Lovelace",
		Email:          email,
		Phone:          "+92-300-1234567",
		Source:         "referral",
		Skills:         []string{"go", "postgres"},
		ExpectedSalary: 120000,
	}
}

func createApplication(t *testing.T, env *testEnv, email string) *models.Application {
	t.Helper()
	candidate, err := env.hiring.CreateCandidate(env.org.ID, newCandidate(email))
	require.NoError(t, err)
	app, err := env.hiring.CreateApplication(env.org.ID, candidate.ID, "Software Engineer", "Engineering", "full-time", env.admin.ID)
	require.NoError(t, err)
	return app
}

func TestCandidateEmailUniquePerOrganization(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.hiring.CreateCandidate(env.org.ID, newCandidate("ada@analytical.test"))
	require.NoError(t, err)
	_, err = env.hiring.CreateCandidate(env.org.ID, newCandidate("ada@analytical.test"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.hiring.CreateCandidate(env.org.ID, newCandidate("bad-email"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplicationStartsAtApplied(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	assert.Equal(t, models.StageApplied, app.Stage)
	require.Len(t, app.Timeline, 1)
	assert.Equal(t, models.StageApplied, app.Timeline[0].Stage)
	assert.Equal(t, env.admin.ID, app.Timeline[0].MovedBy)
	require.NotNil(t, app.Candidate)
	assert.Equal(t, "ada@analytical.test", app.Candidate.Email)
}

func TestMoveStageForwardOnly(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	// 可以跳阶段前进
	moved, err := env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageInterview}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageInterview, moved.Stage)
	assert.Len(t, moved.Timeline, 2)

	// 回退被拒
	_, err = env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageScreening}, env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// 未知阶段
	_, err = env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: "daydreaming"}, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// rejected 从任何非终态可达
	rejected, err := env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageRejected, Notes: "not a fit"}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageRejected, rejected.Stage)

	// 终态后不再流转
	_, err = env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageHired}, env.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTimelineAppendsExactlyOnePerMove(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	stages := []models.ApplicationStage{models.StageScreening, models.StageInterview}
	for i, stage := range stages {
		moved, err := env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: stage}, env.admin.ID)
		require.NoError(t, err)
		assert.Len(t, moved.Timeline, i+2)
	}
}

func TestOfferStageSpawnsOnboarding(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	moved, err := env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageOffer}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageOffer, moved.Stage)

	// 候选人资料派生出 pending 入职
	ob, err := env.db.FindActiveOnboardingByEmail(env.org.ID, "ada@analytical.test")
	require.NoError(t, err)
	require.NotNil(t, ob)
	assert.Equal(t, models.OnboardingPending, ob.Status)
	assert.Equal(t, "Software Engineer", ob.OfferDetails.Designation)
	assert.Equal(t, float64(120000), ob.OfferDetails.Salary)
}

func TestOfferStageFailsWhenOnboardingBlocked(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	// 预先占住入职链
	_, err := env.onboarding.CreateEmployee(env.org.ID, newEmployeeRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	_, err = env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageOffer}, env.admin.ID)
	assert.ErrorIs(t, err, ErrDependency)
}

func TestFormSubmitAutoHiresApplication(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	moved, err := env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageOffer}, env.admin.ID)
	require.NoError(t, err)
	timelineBefore := len(moved.Timeline)

	// 候选人走 token 链：接受offer，提交表单
	ob, err := env.db.FindActiveOnboardingByEmail(env.org.ID, "ada@analytical.test")
	require.NoError(t, err)
	resent, err := env.onboarding.ResendOfferLetter(ob.ID, env.org.ID)
	require.NoError(t, err)
	accepted, err := env.onboarding.AcceptOffer(resent.Token)
	require.NoError(t, err)
	_, err = env.forms.Submit(accepted.EmploymentFormToken, validSubmission())
	require.NoError(t, err)

	// 申请自动进入 hired，时间线追加一条 automated 记录
	hired, err := env.hiring.GetApplication(app.ID, env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageHired, hired.Stage)
	assert.NotNil(t, hired.HiredAt)
	require.Len(t, hired.Timeline, timelineBefore+1)
	last := hired.Timeline[len(hired.Timeline)-1]
	assert.True(t, last.Automated)
	assert.Equal(t, models.StageHired, last.Stage)
}

func TestAddNoteAndStats(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")
	createApplication(t, env, "charles@analytical.test")

	_, err := env.hiring.AddNote(app.ID, env.org.ID, env.admin.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	noted, err := env.hiring.AddNote(app.ID, env.org.ID, env.admin.ID, "strong portfolio")
	require.NoError(t, err)
	require.Len(t, noted.Notes, 1)
	assert.Equal(t, "strong portfolio", noted.Notes[0].Text)

	_, err = env.hiring.MoveStage(app.ID, env.org.ID, models.StageMoveRequest{Stage: models.StageScreening}, env.admin.ID)
	require.NoError(t, err)

	stats, err := env.hiring.Stats(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats["screening"])
	assert.Equal(t, 1, stats["applied"])
}

func TestDeleteApplication(t *testing.T) {
	env := newTestEnv(t)
	app := createApplication(t, env, "ada@analytical.test")

	require.NoError(t, env.hiring.DeleteApplication(app.ID, env.org.ID))

	_, err := env.hiring.GetApplication(app.ID, env.org.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, total, err := env.hiring.ListApplications(database.ListQuery{OrganizationID: env.org.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
