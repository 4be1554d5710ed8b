package database

import (
	"fmt"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// ListQuery 列表查询通用参数（组织范围 + 过滤 + 分页）
type ListQuery struct {
	OrganizationID string
	Status         string
	Email          string
	UserID         string
	Page           int
	Limit          int
}

// Normalize 修正非法分页参数
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
}

// Offset 计算跳过的条数
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// DatabaseInterface 定义数据库访问接口
type DatabaseInterface interface {
	// 用户管理
	CreateUser(user *models.User) error
	GetUserByEmail(orgID, email string) (*models.User, error)
	// FindUserByEmail 跨组织查找（登录入口使用，邮箱全局唯一约定）
	FindUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id string) error

	// Organizations
	CreateOrganization(org *models.Organization) error
	GetOrganization(orgID string) (*models.Organization, error)
	UpdateOrganization(org *models.Organization) error

	// Onboardings
	CreateOnboarding(ob *models.Onboarding) error
	GetOnboardingByID(id string) (*models.Onboarding, error)
	// GetOnboardingByTokenHash resolves by the stored hash; returns
	// (nil, nil) when nothing matches so callers cannot distinguish
	// "wrong token" from "no such record".
	GetOnboardingByTokenHash(hash string) (*models.Onboarding, error)
	UpdateOnboarding(ob *models.Onboarding) error
	ListOnboardings(q ListQuery) ([]models.Onboarding, int, error)
	CountOnboardingsByStatus(orgID string) (map[string]int, error)
	// FindActiveOnboardingByEmail 查找该邮箱未进入终态的 Onboarding
	FindActiveOnboardingByEmail(orgID, email string) (*models.Onboarding, error)
	FindOnboardingByEmailAndStatus(orgID, email string, status models.OnboardingStatus) (*models.Onboarding, error)
	// DeleteOnboardingsByEmail 仅供开发工具路由使用
	DeleteOnboardingsByEmail(orgID, email string) (int, error)

	// Employment forms
	CreateEmploymentForm(form *models.EmploymentForm) error
	GetEmploymentFormByID(id string) (*models.EmploymentForm, error)
	GetEmploymentFormByTokenHash(hash string) (*models.EmploymentForm, error)
	UpdateEmploymentForm(form *models.EmploymentForm) error
	// UpdateEmploymentFormIfStatus persists form only when the stored
	// status is one of allowed; returns false when another writer got
	// there first (first-writer-wins).
	UpdateEmploymentFormIfStatus(form *models.EmploymentForm, allowed ...models.EmploymentFormStatus) (bool, error)
	ListEmploymentForms(q ListQuery) ([]models.EmploymentForm, int, error)

	// Contracts
	CreateContract(contract *models.EmploymentContract) error
	GetContractByID(id string) (*models.EmploymentContract, error)
	GetContractByTokenHash(hash string) (*models.EmploymentContract, error)
	UpdateContract(contract *models.EmploymentContract) error
	ListContracts(q ListQuery) ([]models.EmploymentContract, int, error)

	// Appointment letters
	CreateAppointmentLetter(letter *models.AppointmentLetter) error
	GetAppointmentLetterByID(id string) (*models.AppointmentLetter, error)
	GetAppointmentLetterByTokenHash(hash string) (*models.AppointmentLetter, error)
	UpdateAppointmentLetter(letter *models.AppointmentLetter) error
	ListAppointmentLetters(q ListQuery) ([]models.AppointmentLetter, int, error)

	// Hiring pipeline
	CreateCandidate(c *models.Candidate) error
	GetCandidateByID(id string) (*models.Candidate, error)
	GetCandidateByEmail(orgID, email string) (*models.Candidate, error)
	CreateApplication(a *models.Application) error
	GetApplicationByID(id string) (*models.Application, error)
	GetApplicationByCandidate(orgID, candidateID string) (*models.Application, error)
	UpdateApplication(a *models.Application) error
	DeleteApplication(id string) error
	ListApplications(q ListQuery) ([]models.Application, int, error)
	CountApplicationsByStage(orgID string) (map[string]int, error)

	// 考勤
	CreateAttendanceRecord(rec *models.AttendanceRecord) error
	GetOpenAttendanceRecord(orgID, userID, date string) (*models.AttendanceRecord, error)
	UpdateAttendanceRecord(rec *models.AttendanceRecord) error
	ListAttendanceRecords(q ListQuery) ([]models.AttendanceRecord, int, error)

	// 健康检查
	HealthCheck() error

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	UseLocalDB   bool
	LocalDataDir string
	PostgresDSN  string
	Debug        bool
}

// NewDatabase 根据配置选择数据库实现
func NewDatabase(config DatabaseConfig) DatabaseInterface {
	if config.PostgresDSN != "" && !config.UseLocalDB {
		fmt.Printf("Using PostgreSQL database\n")
		return NewPostgresDatabase(config.PostgresDSN)
	}

	fmt.Printf("Using local file database at %s\n", config.LocalDataDir)
	return NewLocalDatabase(config.LocalDataDir)
}
