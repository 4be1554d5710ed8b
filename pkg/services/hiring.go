package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// stageOrder 招聘阶段的前进顺序，rejected 从任何非终态可达
var stageOrder = map[models.ApplicationStage]int{
	models.StageApplied:   0,
	models.StageScreening: 1,
	models.StageInterview: 2,
	models.StageOffer:     3,
	models.StageHired:     4,
}

// HiringService 招聘管道：候选人 + 职位申请 + 阶段流转
// offer 阶段自动派生 Onboarding（同步链，失败向上传播）
type HiringService struct {
	db         database.DatabaseInterface
	orgs       *OrgService
	onboarding *OnboardingService
	notify     *NotificationService
}

// NewHiringService 创建招聘服务
func NewHiringService(db database.DatabaseInterface, orgs *OrgService, onboarding *OnboardingService, notify *NotificationService) *HiringService {
	return &HiringService{db: db, orgs: orgs, onboarding: onboarding, notify: notify}
}

// CreateCandidate 建档候选人，确认邮件尽力发送
func (s *HiringService) CreateCandidate(orgID string, c *models.Candidate) (*models.Candidate, error) {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.Name == "" || c.Email == "" || !strings.Contains(c.Email, "@") {
		return nil, wrapErr(ErrValidation, "name and a valid email are required")
	}

	existing, err := s.db.GetCandidateByEmail(orgID, c.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, wrapErr(ErrConflict, "a candidate already exists with email %s", c.Email)
	}

	c.ID = uuid.New().String()
	c.OrganizationID = orgID
	c.IsActive = true
	if err := s.db.CreateCandidate(c); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
		s.notify.SendCandidateAcknowledgement(org, c)
	}
	return c, nil
}

// GetCandidate 组织范围内读取候选人
func (s *HiringService) GetCandidate(id, orgID string) (*models.Candidate, error) {
	c, err := s.db.GetCandidateByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, wrapErr(ErrNotFound, "candidate %s", id)
	}
	if c.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "candidate belongs to another organization")
	}
	return c, nil
}

// CreateApplication 建立申请，起始阶段 applied，时间线写入首条记录
func (s *HiringService) CreateApplication(orgID, candidateID, positionTitle, department, employmentType, createdBy string) (*models.Application, error) {
	if positionTitle == "" {
		return nil, wrapErr(ErrValidation, "position_title is required")
	}
	candidate, err := s.GetCandidate(candidateID, orgID)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CandidateID:    candidate.ID,
		PositionTitle:  positionTitle,
		Department:     department,
		EmploymentType: employmentType,
		Stage:          models.StageApplied,
		Timeline: []models.TimelineEntry{{
			Stage:   models.StageApplied,
			MovedAt: time.Now(),
			MovedBy: createdBy,
		}},
	}
	if err := s.db.CreateApplication(app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.Candidate = candidate
	return app, nil
}

// GetApplication 组织范围内读取申请，附带候选人
func (s *HiringService) GetApplication(id, orgID string) (*models.Application, error) {
	app, err := s.db.GetApplicationByID(id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, wrapErr(ErrNotFound, "application %s", id)
	}
	if app.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "application belongs to another organization")
	}
	if c, err := s.db.GetCandidateByID(app.CandidateID); err == nil {
		app.Candidate = c
	}
	return app, nil
}

// MoveStage 阶段流转：只允许前进或 rejected，终态不再流转
// 每次流转在时间线上追加恰好一条记录；进入 offer 时同步派生 Onboarding
func (s *HiringService) MoveStage(id, orgID string, req models.StageMoveRequest, movedBy string) (*models.Application, error) {
	app, err := s.GetApplication(id, orgID)
	if err != nil {
		return nil, err
	}
	if app.Stage.IsTerminal() {
		return nil, wrapErr(ErrConflict, "application is already %s", app.Stage)
	}

	target := req.Stage
	if target != models.StageRejected {
		targetRank, ok := stageOrder[target]
		if !ok {
			return nil, wrapErr(ErrValidation, "unknown stage %q", target)
		}
		if targetRank <= stageOrder[app.Stage] {
			return nil, wrapErr(ErrConflict, "cannot move application backwards from %s to %s", app.Stage, target)
		}
	}

	now := time.Now()
	app.Stage = target
	app.Timeline = append(app.Timeline, models.TimelineEntry{
		Stage:   target,
		MovedAt: now,
		MovedBy: movedBy,
		Notes:   req.Notes,
	})
	if target == models.StageHired {
		app.HiredAt = &now
	}
	if err := s.db.UpdateApplication(app); err != nil {
		return nil, fmt.Errorf("failed to move application stage: %w", err)
	}

	// offer 阶段派生入职流程；派生失败向调用方传播
	if target == models.StageOffer {
		if err := s.spawnOnboarding(app, movedBy); err != nil {
			return nil, wrapErr(ErrDependency, "application moved to offer but onboarding could not be created: %v", err)
		}
	}
	return app, nil
}

// spawnOnboarding offer 阶段的跨实体链：为候选人发起入职
func (s *HiringService) spawnOnboarding(app *models.Application, adminID string) error {
	candidate := app.Candidate
	if candidate == nil {
		c, err := s.db.GetCandidateByID(app.CandidateID)
		if err != nil || c == nil {
			return fmt.Errorf("candidate %s unavailable: %v", app.CandidateID, err)
		}
		candidate = c
	}

	result, err := s.onboarding.CreateEmployee(app.OrganizationID, models.CreateEmployeeRequest{
		FullName:    candidate.Name,
		Email:       candidate.Email,
		Designation: app.PositionTitle,
		Department:  app.Department,
		Salary:      candidate.ExpectedSalary,
		JoiningDate: time.Now().AddDate(0, 1, 0),
		Phone:       candidate.Phone,
	}, adminID)
	if err != nil {
		return err
	}

	// offer 邮件由这里触发，token 只经过邮件链接传递
	if org, orgErr := s.orgs.GetCachedOrganization(app.OrganizationID); orgErr == nil {
		s.notify.SendOnboardingInvite(org, result.Onboarding, result.Token)
	}
	return nil
}

// AddNote 在申请上追加备注
func (s *HiringService) AddNote(id, orgID, author, text string) (*models.Application, error) {
	if text == "" {
		return nil, wrapErr(ErrValidation, "note text is required")
	}
	app, err := s.GetApplication(id, orgID)
	if err != nil {
		return nil, err
	}
	app.Notes = append(app.Notes, models.ApplicationNote{
		Author:    author,
		Text:      text,
		CreatedAt: time.Now(),
	})
	if err := s.db.UpdateApplication(app); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return app, nil
}

// ListApplications 分页列表
func (s *HiringService) ListApplications(q database.ListQuery) ([]models.Application, int, error) {
	return s.db.ListApplications(q)
}

// Stats 各阶段数量统计
func (s *HiringService) Stats(orgID string) (map[string]int, error) {
	return s.db.CountApplicationsByStage(orgID)
}

// DeleteApplication 删除申请
func (s *HiringService) DeleteApplication(id, orgID string) error {
	if _, err := s.GetApplication(id, orgID); err != nil {
		return err
	}
	return s.db.DeleteApplication(id)
}
