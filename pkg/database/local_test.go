package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// 模型把 token 哈希标记为 json:"-"，落盘必须走存储结构，
// 否则签发后第一次保存哈希就丢了，token 永远解析不到
func TestLocalStorePersistsTokenHashes(t *testing.T) {
	dir := t.TempDir()
	db := NewLocalDatabase(dir)

	require.NoError(t, db.CreateOnboarding(&models.Onboarding{
		OrganizationID: "org-1", Status: models.OnboardingPending, Token: "ob-hash",
	}))
	require.NoError(t, db.CreateEmploymentForm(&models.EmploymentForm{
		OrganizationID: "org-1", Status: models.FormDraft, Token: "form-hash",
	}))
	require.NoError(t, db.CreateContract(&models.EmploymentContract{
		OrganizationID: "org-1", Status: models.ContractDraft, SigningToken: "contract-hash",
	}))
	require.NoError(t, db.CreateAppointmentLetter(&models.AppointmentLetter{
		OrganizationID: "org-1", Status: models.AppointmentSent, Token: "letter-hash",
	}))

	// 重新打开同一目录：哈希必须是从磁盘恢复的，不是内存残留
	db = NewLocalDatabase(dir)

	ob, err := db.GetOnboardingByTokenHash("ob-hash")
	require.NoError(t, err)
	require.NotNil(t, ob)
	assert.Equal(t, "ob-hash", ob.Token)

	form, err := db.GetEmploymentFormByTokenHash("form-hash")
	require.NoError(t, err)
	require.NotNil(t, form)

	contract, err := db.GetContractByTokenHash("contract-hash")
	require.NoError(t, err)
	require.NotNil(t, contract)

	letter, err := db.GetAppointmentLetterByTokenHash("letter-hash")
	require.NoError(t, err)
	require.NotNil(t, letter)
}

func TestLocalStorePersistsTokenHashAcrossUpdate(t *testing.T) {
	dir := t.TempDir()
	db := NewLocalDatabase(dir)

	ob := &models.Onboarding{OrganizationID: "org-1", Status: models.OnboardingPending, Token: "ob-hash"}
	require.NoError(t, db.CreateOnboarding(ob))

	// 过期转移这类更新不能把哈希冲掉
	ob.Status = models.OnboardingExpired
	require.NoError(t, db.UpdateOnboarding(ob))

	db = NewLocalDatabase(dir)
	got, err := db.GetOnboardingByTokenHash("ob-hash")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.OnboardingExpired, got.Status)
}

func TestLocalStorePersistsPasswordHash(t *testing.T) {
	dir := t.TempDir()
	db := NewLocalDatabase(dir)

	require.NoError(t, db.CreateUser(&models.User{
		OrganizationID: "org-1", Email: "hr@analytical.test", Password: "bcrypt-digest", IsActive: true,
	}))

	db = NewLocalDatabase(dir)
	user, err := db.FindUserByEmail("hr@analytical.test")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "bcrypt-digest", user.Password)
}

// 存储文件里有哈希，但模型本身序列化时依然脱敏
func TestTokenHashRedactedFromModelJSON(t *testing.T) {
	dir := t.TempDir()
	db := NewLocalDatabase(dir)

	require.NoError(t, db.CreateOnboarding(&models.Onboarding{
		OrganizationID: "org-1", Status: models.OnboardingPending, Token: "ob-hash",
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "onboardings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ob-hash")

	ob, err := db.GetOnboardingByTokenHash("ob-hash")
	require.NoError(t, err)
	require.NotNil(t, ob)

	payload, err := json.Marshal(ob)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "ob-hash")
}
