package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// EmploymentFormService 雇佣信息表生命周期状态机
// draft → pending_review → {approved, rejected, needs_revision}
// needs_revision → pending_review（可重新提交）
type EmploymentFormService struct {
	db        database.DatabaseInterface
	orgs      *OrgService
	contracts *ContractService
	notify    *NotificationService

	// autoChainContracts 审批通过后自动创建合同（默认人工操作）
	autoChainContracts bool
}

// NewEmploymentFormService 创建表单服务
func NewEmploymentFormService(db database.DatabaseInterface, orgs *OrgService, contracts *ContractService, notify *NotificationService, autoChainContracts bool) *EmploymentFormService {
	return &EmploymentFormService{
		db:                 db,
		orgs:               orgs,
		contracts:          contracts,
		notify:             notify,
		autoChainContracts: autoChainContracts,
	}
}

// Create 创建 draft 表单并签发token
// 表单请求邮件尽力发送，失败不影响创建结果
func (s *EmploymentFormService) Create(orgID, email, appointmentLetterID string) (*models.EmploymentForm, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", wrapErr(ErrValidation, "a valid employee email is required")
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue form token: %w", err)
	}

	form := &models.EmploymentForm{
		ID:                  uuid.New().String(),
		OrganizationID:      orgID,
		AppointmentLetterID: appointmentLetterID,
		EmployeeEmail:       email,
		Status:              models.FormDraft,
		Token:               hashed,
		TokenExpiry:         expiry,
		ContactInfo:         models.ContactInfo{Email: email},
	}
	if err := s.db.CreateEmploymentForm(form); err != nil {
		return nil, "", fmt.Errorf("failed to create employment form: %w", err)
	}

	if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
		s.notify.SendEmploymentFormRequest(org, email, plain)
	} else {
		fmt.Printf("WARN: skipping form request email, org %s unavailable: %v\n", orgID, err)
	}

	return form, plain, nil
}

func (s *EmploymentFormService) resolve(plainToken string) (*models.EmploymentForm, error) {
	if plainToken == "" {
		return nil, wrapErr(ErrValidation, "token is required")
	}
	form, err := s.db.GetEmploymentFormByTokenHash(utils.HashToken(plainToken))
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, wrapErr(ErrNotFound, "employment form token")
	}
	return form, nil
}

// EmploymentFormDetails 公开端点返回：表单 + 组织品牌
type EmploymentFormDetails struct {
	Form     *models.EmploymentForm `json:"form"`
	Branding models.OrgBranding     `json:"branding"`
}

// GetByToken token持有者读取表单
// 已提交的表单返回 Conflict，客户端据此显示"HR审核中"
func (s *EmploymentFormService) GetByToken(plainToken string) (*EmploymentFormDetails, error) {
	form, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if !form.Status.IsEditable() {
		return nil, wrapErr(ErrConflict, "employment form has already been submitted")
	}
	if form.IsTokenExpired() {
		return nil, wrapErr(ErrExpired, "employment form link has expired")
	}

	branding, err := s.orgs.GetBranding(form.OrganizationID)
	if err != nil {
		fmt.Printf("WARN: failed to load branding for org %s: %v\n", form.OrganizationID, err)
		branding = models.OrgBranding{}
	}
	return &EmploymentFormDetails{Form: form, Branding: branding}, nil
}

// Submit 候选人提交表单：draft|needs_revision → pending_review
// 条件更新保证先写者胜，并发重复提交的后来者拿到 Conflict
func (s *EmploymentFormService) Submit(plainToken string, submission models.EmploymentFormSubmission) (*models.EmploymentForm, error) {
	form, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if !form.Status.IsEditable() {
		return nil, wrapErr(ErrConflict, "employment form has already been submitted")
	}
	if form.IsTokenExpired() {
		return nil, wrapErr(ErrExpired, "employment form link has expired")
	}

	// 进入 pending_review 时才强制必填字段
	if submission.PersonalInfo.LegalName == "" {
		return nil, wrapErr(ErrValidation, "legal_name is required")
	}
	if submission.CnicInfo.CnicNumber == "" {
		return nil, wrapErr(ErrValidation, "cnic_number is required")
	}
	if submission.ContactInfo.Phone == "" {
		return nil, wrapErr(ErrValidation, "phone is required")
	}

	now := time.Now()
	form.PersonalInfo = submission.PersonalInfo
	form.CnicInfo = submission.CnicInfo
	form.ContactInfo = submission.ContactInfo
	if form.ContactInfo.Email == "" {
		form.ContactInfo.Email = form.EmployeeEmail
	}
	form.Addresses = submission.Addresses
	form.AcceptedPolicies = submission.AcceptedPolicies
	form.Status = models.FormPendingReview
	form.SubmittedAt = &now
	form.RevisionFields = nil

	ok, err := s.db.UpdateEmploymentFormIfStatus(form, models.FormDraft, models.FormNeedsRevision)
	if err != nil {
		return nil, fmt.Errorf("failed to submit employment form: %w", err)
	}
	if !ok {
		return nil, wrapErr(ErrConflict, "employment form has already been submitted")
	}

	// 三个尽力而为的跨实体对账步骤，各自失败只记录
	s.reconcileUser(form, submission)
	s.reconcileOnboarding(form)
	s.reconcileApplication(form)

	return form, nil
}

// reconcileUser 用表单数据更新占位账号并激活
func (s *EmploymentFormService) reconcileUser(form *models.EmploymentForm, submission models.EmploymentFormSubmission) {
	user, err := s.db.GetUserByEmail(form.OrganizationID, form.EmployeeEmail)
	if err != nil || user == nil {
		fmt.Printf("WARN: no user to reconcile for form %s: %v\n", form.ID, err)
		return
	}

	if submission.PersonalInfo.LegalName != "" {
		user.FullName = submission.PersonalInfo.LegalName
	}
	if submission.PersonalInfo.DateOfBirth != nil {
		user.DateOfBirth = submission.PersonalInfo.DateOfBirth
	}
	if submission.PersonalInfo.Photo != "" {
		user.Profile.Avatar = submission.PersonalInfo.Photo
	}
	if submission.CnicInfo.CnicFrontImage != "" {
		user.Profile.CnicImage = submission.CnicInfo.CnicFrontImage
	}
	user.Address = submission.Addresses.PrimaryAddress
	user.EmergencyContact = submission.ContactInfo.EmergencyContact
	if submission.Account.Github != "" {
		user.SocialLinks.Github = submission.Account.Github
	}
	if submission.Account.Linkedin != "" {
		user.SocialLinks.Linkedin = submission.Account.Linkedin
	}
	if len(submission.Account.Password) >= 6 {
		if hashed, err := utils.HashPassword(submission.Account.Password); err == nil {
			user.Password = hashed
		}
	}
	user.IsActive = true
	user.IsEmailVerified = true

	if err := s.db.UpdateUser(user); err != nil {
		fmt.Printf("WARN: failed to activate user %s after form submit: %v\n", user.ID, err)
	}
}

// reconcileOnboarding 把已接受的入职记录推进到 completed
func (s *EmploymentFormService) reconcileOnboarding(form *models.EmploymentForm) {
	ob, err := s.db.FindOnboardingByEmailAndStatus(form.OrganizationID, form.EmployeeEmail, models.OnboardingAccepted)
	if err != nil || ob == nil {
		return
	}
	now := time.Now()
	ob.Status = models.OnboardingCompleted
	ob.CompletedAt = &now
	if err := s.db.UpdateOnboarding(ob); err != nil {
		fmt.Printf("WARN: failed to complete onboarding %s after form submit: %v\n", ob.ID, err)
	}
}

// reconcileApplication 招聘管道自动 hired，时间线打 automated 标记
func (s *EmploymentFormService) reconcileApplication(form *models.EmploymentForm) {
	candidate, err := s.db.GetCandidateByEmail(form.OrganizationID, form.EmployeeEmail)
	if err != nil || candidate == nil {
		return
	}
	app, err := s.db.GetApplicationByCandidate(form.OrganizationID, candidate.ID)
	if err != nil || app == nil || app.Stage.IsTerminal() {
		return
	}
	now := time.Now()
	app.Stage = models.StageHired
	app.HiredAt = &now
	app.Timeline = append(app.Timeline, models.TimelineEntry{
		Stage:     models.StageHired,
		MovedAt:   now,
		Notes:     "employment form submitted",
		Automated: true,
	})
	if err := s.db.UpdateApplication(app); err != nil {
		fmt.Printf("WARN: failed to auto-hire application %s after form submit: %v\n", app.ID, err)
	}
}

// Review 管理员审核：pending_review → approved|rejected
func (s *EmploymentFormService) Review(id, orgID string, req models.ReviewRequest, reviewerID string) (*models.EmploymentForm, error) {
	if req.Status != string(models.FormApproved) && req.Status != string(models.FormRejected) {
		return nil, wrapErr(ErrValidation, "status must be approved or rejected")
	}

	form, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if form.Status != models.FormPendingReview {
		return nil, wrapErr(ErrConflict, "form cannot be reviewed from status %s", form.Status)
	}

	now := time.Now()
	form.Status = models.EmploymentFormStatus(req.Status)
	form.ReviewedAt = &now
	form.ReviewedBy = reviewerID
	form.ReviewNotes = req.Notes
	if err := s.db.UpdateEmploymentForm(form); err != nil {
		return nil, fmt.Errorf("failed to review employment form: %w", err)
	}

	if form.Status == models.FormApproved {
		if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
			s.notify.SendApprovalNextSteps(org, form.EmployeeEmail)
		}
		if s.autoChainContracts {
			s.autoCreateContract(form, reviewerID)
		}
	}
	return form, nil
}

// autoCreateContract 审批通过自动建合同（开关开启时），失败只记录
func (s *EmploymentFormService) autoCreateContract(form *models.EmploymentForm, reviewerID string) {
	req := models.ContractCreateRequest{
		EmploymentFormID: form.ID,
		ContractDetails: models.ContractDetails{
			Position:       "To be confirmed",
			EmploymentType: "full-time",
			StartDate:      time.Now(),
		},
	}
	if _, _, err := s.contracts.Create(form.OrganizationID, req, reviewerID); err != nil {
		fmt.Printf("WARN: auto contract creation failed for form %s: %v\n", form.ID, err)
	}
}

// RequestRevision 要求修改：pending_review → needs_revision
// 轮换token并把需要修改的字段列表发给候选人
func (s *EmploymentFormService) RequestRevision(id, orgID string, req models.RevisionRequest, reviewerID string) (*models.EmploymentForm, error) {
	if len(req.Fields) == 0 {
		return nil, wrapErr(ErrValidation, "at least one field must be listed for revision")
	}

	form, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if form.Status != models.FormPendingReview {
		return nil, wrapErr(ErrConflict, "revision cannot be requested from status %s", form.Status)
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, fmt.Errorf("failed to issue form token: %w", err)
	}

	now := time.Now()
	form.Status = models.FormNeedsRevision
	form.ReviewedAt = &now
	form.ReviewedBy = reviewerID
	form.ReviewNotes = req.Notes
	form.RevisionFields = req.Fields
	form.Token = hashed
	form.TokenExpiry = expiry
	if err := s.db.UpdateEmploymentForm(form); err != nil {
		return nil, fmt.Errorf("failed to request revision: %w", err)
	}

	if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
		s.notify.SendFormRevisionRequested(org, form, plain)
	}
	return form, nil
}

// GetForm 管理端按ID读取（组织范围内）
func (s *EmploymentFormService) GetForm(id, orgID string) (*models.EmploymentForm, error) {
	return s.getScoped(id, orgID)
}

// ListForms 管理端分页列表
func (s *EmploymentFormService) ListForms(q database.ListQuery) ([]models.EmploymentForm, int, error) {
	return s.db.ListEmploymentForms(q)
}

func (s *EmploymentFormService) getScoped(id, orgID string) (*models.EmploymentForm, error) {
	form, err := s.db.GetEmploymentFormByID(id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, wrapErr(ErrNotFound, "employment form %s", id)
	}
	if form.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "employment form belongs to another organization")
	}
	return form, nil
}

// findEditableByEmail 查找该邮箱仍可编辑的表单（ensure 端点使用）
func (s *EmploymentFormService) findEditableByEmail(orgID, email string) (*models.EmploymentForm, error) {
	forms, _, err := s.db.ListEmploymentForms(database.ListQuery{
		OrganizationID: orgID,
		Email:          email,
		Page:           1,
		Limit:          20,
	})
	if err != nil {
		return nil, err
	}
	for i := range forms {
		if strings.EqualFold(forms[i].EmployeeEmail, email) && forms[i].Status.IsEditable() {
			return &forms[i], nil
		}
	}
	return nil, nil
}

// rotateToken 给已有表单轮换token，返回新明文
func (s *EmploymentFormService) rotateToken(form *models.EmploymentForm) (string, error) {
	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return "", fmt.Errorf("failed to issue form token: %w", err)
	}
	form.Token = hashed
	form.TokenExpiry = expiry
	if err := s.db.UpdateEmploymentForm(form); err != nil {
		return "", fmt.Errorf("failed to rotate form token: %w", err)
	}
	return plain, nil
}
