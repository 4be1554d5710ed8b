package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// testEnv 用本地文件数据库装配全部服务
type testEnv struct {
	db           database.DatabaseInterface
	events       *EventBus
	orgs         *OrgService
	notify       *NotificationService
	contracts    *ContractService
	forms        *EmploymentFormService
	onboarding   *OnboardingService
	appointments *AppointmentService
	hiring       *HiringService

	org   *models.Organization
	admin *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewLocalDatabase(t.TempDir())
	events := NewEventBus()
	notify := NewNotificationService(&LogMailer{}, "http://localhost:4080")
	orgs := NewOrgService(db)
	contracts := NewContractService(db, orgs, notify, events)
	forms := NewEmploymentFormService(db, orgs, contracts, notify, false)
	onboarding := NewOnboardingService(db, orgs, forms, notify)
	appointments := NewAppointmentService(db, orgs, notify, events)
	hiring := NewHiringService(db, orgs, onboarding, notify)

	org := &models.Organization{
		ID:          uuid.New().String(),
		CompanyName: "Analytical Engines Ltd",
		Slug:        "analytical-engines",
		Theme:       models.OrgTheme{PrimaryColor: "#336699"},
		Subscription: models.OrgSubscription{
			Plan:   "pro",
			Status: models.SubscriptionActive,
		},
	}
	require.NoError(t, db.CreateOrganization(org))

	admin := &models.User{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		Email:          "hr@analytical.test",
		FullName:       "Grace Admin",
		Role:           models.RoleAdmin,
		IsActive:       true,
	}
	require.NoError(t, db.CreateUser(admin))

	return &testEnv{
		db:           db,
		events:       events,
		orgs:         orgs,
		notify:       notify,
		contracts:    contracts,
		forms:        forms,
		onboarding:   onboarding,
		appointments: appointments,
		hiring:       hiring,
		org:          org,
		admin:        admin,
	}
}

// newEmployeeRequest 测试用的合法入职请求
func newEmployeeRequest(email string) models.CreateEmployeeRequest {
	return models.CreateEmployeeRequest{
		FullName:    "Ada Lovelace",
		Email:       email,
		Designation: "Software Engineer",
		Department:  "Engineering",
		Salary:      120000,
		JoiningDate: time.Now().AddDate(0, 1, 0),
		Phone:       "+92-300-1234567",
	}
}

// validSubmission 测试用的合法表单提交
func validSubmission() models.EmploymentFormSubmission {
	return models.EmploymentFormSubmission{
		PersonalInfo: models.PersonalInfo{LegalName: "Ada Lovelace", Gender: "female"},
		CnicInfo:     models.CnicInfo{CnicNumber: "35202-1234567-8"},
		ContactInfo: models.ContactInfo{
			Phone: "+92-300-1234567",
			EmergencyContact: models.EmergencyContact{
				Name: "Annabella Byron", Relationship: "mother", Phone: "+92-300-7654321",
			},
		},
		Addresses: models.FormAddresses{
			PrimaryAddress: models.Address{City: "Lahore", Country: "PK"},
		},
		Account: models.FormAccount{
			Password: "engine-no-1",
			Github:   "https://github.com/ada",
		},
	}
}
