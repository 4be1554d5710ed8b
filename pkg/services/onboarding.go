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

// OnboardingService 入职生命周期状态机
// pending --accept--> accepted --complete--> completed
// pending --reject--> rejected
// {pending,accepted} --revoke--> revoked
// pending --(惰性过期)--> expired
type OnboardingService struct {
	db     database.DatabaseInterface
	orgs   *OrgService
	forms  *EmploymentFormService
	notify *NotificationService
}

// NewOnboardingService 创建入职服务
func NewOnboardingService(db database.DatabaseInterface, orgs *OrgService, forms *EmploymentFormService, notify *NotificationService) *OnboardingService {
	return &OnboardingService{db: db, orgs: orgs, forms: forms, notify: notify}
}

// CreateEmployeeResult createEmployee 的返回值：占位账号 + 入职记录 + 明文token
type CreateEmployeeResult struct {
	Employee   *models.User       `json:"employee"`
	Onboarding *models.Onboarding `json:"onboarding"`
	Token      string             `json:"token"`
}

// CreateEmployee 管理员发起入职：创建未激活占位账号和 pending 入职记录
// 明文 token 只在此返回一次
func (s *OnboardingService) CreateEmployee(orgID string, req models.CreateEmployeeRequest, adminID string) (*CreateEmployeeResult, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" || req.Designation == "" || req.Phone == "" {
		return nil, wrapErr(ErrValidation, "full_name, email, designation and phone are required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, wrapErr(ErrValidation, "invalid email address")
	}
	if req.Salary < 0 {
		return nil, wrapErr(ErrValidation, "salary cannot be negative")
	}

	// 该邮箱不允许已有激活账号或进行中的入职
	existing, err := s.db.GetUserByEmail(orgID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, wrapErr(ErrConflict, "an active user already exists with email %s", req.Email)
	}
	active, err := s.db.FindActiveOnboardingByEmail(orgID, req.Email)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, wrapErr(ErrConflict, "an onboarding is already in progress for %s", req.Email)
	}

	employee := existing
	if employee == nil {
		employee = &models.User{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			Email:          req.Email,
			Password:       utils.GenerateUnusablePasswordHash(),
			FullName:       req.FullName,
			Role:           models.RoleEmployee,
			Designation:    req.Designation,
			Department:     req.Department,
			IsActive:       false,
		}
		if err := s.db.CreateUser(employee); err != nil {
			return nil, fmt.Errorf("failed to create placeholder user: %w", err)
		}
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, fmt.Errorf("failed to issue onboarding token: %w", err)
	}

	ob := &models.Onboarding{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		EmployeeID:     employee.ID,
		OfferDetails: models.OfferDetails{
			FullName:    req.FullName,
			Email:       req.Email,
			Designation: req.Designation,
			Department:  req.Department,
			Salary:      req.Salary,
			JoiningDate: req.JoiningDate,
			Phone:       req.Phone,
		},
		Status:      models.OnboardingPending,
		Token:       hashed,
		TokenExpiry: expiry,
		CreatedBy:   adminID,
	}
	if err := s.db.CreateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to create onboarding: %w", err)
	}

	return &CreateEmployeeResult{Employee: employee, Onboarding: ob, Token: plain}, nil
}

// resolve 按明文token查找记录，统一 NotFound 语义
func (s *OnboardingService) resolve(plainToken string) (*models.Onboarding, error) {
	if plainToken == "" {
		return nil, wrapErr(ErrValidation, "token is required")
	}
	ob, err := s.db.GetOnboardingByTokenHash(utils.HashToken(plainToken))
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, wrapErr(ErrNotFound, "onboarding token")
	}
	return ob, nil
}

// expireIfNeeded 惰性过期：pending 且 token 过期时落库为 expired
// 幂等，重复调用不会重复写
func (s *OnboardingService) expireIfNeeded(ob *models.Onboarding) (bool, error) {
	if ob.Status != models.OnboardingPending || !ob.IsTokenExpired() {
		return false, nil
	}
	ob.Status = models.OnboardingExpired
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return false, err
	}
	return true, nil
}

// OnboardingDetails 公开端点返回：offer 快照 + 组织品牌
type OnboardingDetails struct {
	Onboarding *models.Onboarding `json:"onboarding"`
	Branding   models.OrgBranding `json:"branding"`
}

// GetDetails token持有者查看offer详情
func (s *OnboardingService) GetDetails(plainToken string) (*OnboardingDetails, error) {
	ob, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}

	if expired, err := s.expireIfNeeded(ob); err != nil {
		return nil, err
	} else if expired {
		return nil, wrapErr(ErrExpired, "offer link has expired")
	}

	switch ob.Status {
	case models.OnboardingExpired:
		return nil, wrapErr(ErrExpired, "offer link has expired")
	case models.OnboardingRevoked:
		return nil, wrapErr(ErrForbidden, "this offer has been revoked")
	case models.OnboardingCompleted:
		return nil, wrapErr(ErrConflict, "onboarding is already completed")
	case models.OnboardingRejected:
		return nil, wrapErr(ErrConflict, "this offer has already been declined")
	}

	branding, err := s.orgs.GetBranding(ob.OrganizationID)
	if err != nil {
		// 品牌读取失败不阻塞公开读取
		fmt.Printf("WARN: failed to load branding for org %s: %v\n", ob.OrganizationID, err)
		branding = models.OrgBranding{}
	}

	return &OnboardingDetails{Onboarding: ob, Branding: branding}, nil
}

// AcceptOfferResult 接受offer的返回：同步链出来的表单token一并交给客户端
type AcceptOfferResult struct {
	Onboarding          *models.Onboarding `json:"onboarding"`
	EmploymentFormToken string             `json:"employment_form_token"`
}

// AcceptOffer 接受offer并同步创建雇佣信息表
// 表单创建失败则整个操作失败（编排失败必须向上传播）
func (s *OnboardingService) AcceptOffer(plainToken string) (*AcceptOfferResult, error) {
	ob, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if expired, err := s.expireIfNeeded(ob); err != nil {
		return nil, err
	} else if expired {
		return nil, wrapErr(ErrExpired, "offer link has expired")
	}
	if ob.Status != models.OnboardingPending {
		return nil, wrapErr(ErrConflict, "offer cannot be accepted from status %s", ob.Status)
	}

	now := time.Now()
	ob.Status = models.OnboardingAccepted
	ob.RespondedAt = &now
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to accept offer: %w", err)
	}

	form, formToken, err := s.forms.Create(ob.OrganizationID, ob.OfferDetails.Email, "")
	if err != nil {
		return nil, wrapErr(ErrDependency, "offer accepted but employment form could not be created: %v", err)
	}
	_ = form

	s.notifyCreator(ob, true)
	return &AcceptOfferResult{Onboarding: ob, EmploymentFormToken: formToken}, nil
}

// RejectOffer 拒绝offer并保持占位账号禁用
func (s *OnboardingService) RejectOffer(plainToken, reason string) (*models.Onboarding, error) {
	ob, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if expired, err := s.expireIfNeeded(ob); err != nil {
		return nil, err
	} else if expired {
		return nil, wrapErr(ErrExpired, "offer link has expired")
	}
	if ob.Status != models.OnboardingPending {
		return nil, wrapErr(ErrConflict, "offer cannot be declined from status %s", ob.Status)
	}

	now := time.Now()
	ob.Status = models.OnboardingRejected
	ob.RespondedAt = &now
	ob.RejectionReason = reason
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to decline offer: %w", err)
	}

	s.deactivateEmployee(ob)
	s.notifyCreator(ob, false)
	return ob, nil
}

// CompleteOnboarding 激活账号并结束入职
// 密码至少6位，github/linkedin 至少填一个
func (s *OnboardingService) CompleteOnboarding(plainToken string, completion models.ProfileCompletion) (*models.Onboarding, error) {
	ob, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if ob.Status != models.OnboardingAccepted {
		return nil, wrapErr(ErrConflict, "onboarding cannot be completed from status %s", ob.Status)
	}
	if len(completion.Password) < 6 {
		return nil, wrapErr(ErrValidation, "password must be at least 6 characters")
	}
	if completion.Github == "" && completion.Linkedin == "" {
		return nil, wrapErr(ErrValidation, "at least one of github or linkedin is required")
	}

	user, err := s.db.GetUserByID(ob.EmployeeID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, wrapErr(ErrNotFound, "employee account for this onboarding")
	}

	hashed, err := utils.HashPassword(completion.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hashed
	user.IsActive = true
	user.IsEmailVerified = true
	user.SocialLinks = models.SocialLinks{Github: completion.Github, Linkedin: completion.Linkedin}
	user.Address = completion.Address
	user.EmergencyContact = completion.EmergencyContact
	if completion.Avatar != "" {
		user.Profile.Avatar = completion.Avatar
	}
	if completion.DateOfBirth != nil {
		user.DateOfBirth = completion.DateOfBirth
	}
	if err := s.db.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to activate employee account: %w", err)
	}

	now := time.Now()
	ob.Status = models.OnboardingCompleted
	ob.CompletedAt = &now
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}

	if org, err := s.orgs.GetCachedOrganization(ob.OrganizationID); err == nil {
		s.notify.SendWelcome(org, user.Email, user.FullName)
	}
	return ob, nil
}

// RevokeOnboarding 管理员撤回offer
func (s *OnboardingService) RevokeOnboarding(id, orgID, reason, adminID string) (*models.Onboarding, error) {
	ob, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if ob.Status != models.OnboardingPending && ob.Status != models.OnboardingAccepted {
		return nil, wrapErr(ErrConflict, "onboarding cannot be revoked from status %s", ob.Status)
	}

	now := time.Now()
	ob.Status = models.OnboardingRevoked
	ob.RevokedAt = &now
	ob.RevokedBy = adminID
	ob.RevocationReason = reason
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to revoke onboarding: %w", err)
	}

	s.deactivateEmployee(ob)
	return ob, nil
}

// ResendOfferResult resend 的返回：新的明文token
type ResendOfferResult struct {
	Onboarding *models.Onboarding `json:"onboarding"`
	Token      string             `json:"token"`
}

// ResendOfferLetter 重发offer：轮换token，旧token随哈希覆盖立即失效
func (s *OnboardingService) ResendOfferLetter(id, orgID string) (*ResendOfferResult, error) {
	ob, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if ob.Status != models.OnboardingPending {
		return nil, wrapErr(ErrConflict, "offer letter can only be resent while pending, current status %s", ob.Status)
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, fmt.Errorf("failed to issue onboarding token: %w", err)
	}
	ob.Token = hashed
	ob.TokenExpiry = expiry
	if err := s.db.UpdateOnboarding(ob); err != nil {
		return nil, fmt.Errorf("failed to rotate onboarding token: %w", err)
	}

	return &ResendOfferResult{Onboarding: ob, Token: plain}, nil
}

// EnsureEmploymentForm 幂等补偿端点：accept链断裂时找回或重建表单
// 返回可用的表单token（已有可编辑表单则轮换其token）
func (s *OnboardingService) EnsureEmploymentForm(plainToken string) (*AcceptOfferResult, error) {
	ob, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if ob.Status != models.OnboardingAccepted {
		return nil, wrapErr(ErrConflict, "employment form is only available after the offer is accepted")
	}

	existing, err := s.forms.findEditableByEmail(ob.OrganizationID, ob.OfferDetails.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		formToken, err := s.forms.rotateToken(existing)
		if err != nil {
			return nil, err
		}
		return &AcceptOfferResult{Onboarding: ob, EmploymentFormToken: formToken}, nil
	}

	_, formToken, err := s.forms.Create(ob.OrganizationID, ob.OfferDetails.Email, "")
	if err != nil {
		return nil, wrapErr(ErrDependency, "employment form could not be created: %v", err)
	}
	return &AcceptOfferResult{Onboarding: ob, EmploymentFormToken: formToken}, nil
}

// GetOnboarding 管理端按ID读取（组织范围内）
func (s *OnboardingService) GetOnboarding(id, orgID string) (*models.Onboarding, error) {
	return s.getScoped(id, orgID)
}

// ListOnboardings 管理端分页列表
func (s *OnboardingService) ListOnboardings(q database.ListQuery) ([]models.Onboarding, int, error) {
	return s.db.ListOnboardings(q)
}

// CountByStatus 状态统计
func (s *OnboardingService) CountByStatus(orgID string) (map[string]int, error) {
	return s.db.CountOnboardingsByStatus(orgID)
}

// PurgeByEmail 开发工具：按邮箱硬删除入职记录
func (s *OnboardingService) PurgeByEmail(orgID, email string) (int, error) {
	return s.db.DeleteOnboardingsByEmail(orgID, email)
}

func (s *OnboardingService) getScoped(id, orgID string) (*models.Onboarding, error) {
	ob, err := s.db.GetOnboardingByID(id)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, wrapErr(ErrNotFound, "onboarding %s", id)
	}
	if ob.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "onboarding belongs to another organization")
	}
	return ob, nil
}

// deactivateEmployee 禁用占位账号，失败只记录
func (s *OnboardingService) deactivateEmployee(ob *models.Onboarding) {
	user, err := s.db.GetUserByID(ob.EmployeeID)
	if err != nil || user == nil {
		fmt.Printf("WARN: could not load employee %s for deactivation: %v\n", ob.EmployeeID, err)
		return
	}
	if !user.IsActive {
		return
	}
	user.IsActive = false
	if err := s.db.UpdateUser(user); err != nil {
		fmt.Printf("WARN: failed to deactivate employee %s: %v\n", user.ID, err)
	}
}

// notifyCreator 通知发起offer的管理员，尽力而为
func (s *OnboardingService) notifyCreator(ob *models.Onboarding, accepted bool) {
	if ob.CreatedBy == "" {
		return
	}
	admin, err := s.db.GetUserByID(ob.CreatedBy)
	if err != nil || admin == nil {
		return
	}
	org, err := s.orgs.GetCachedOrganization(ob.OrganizationID)
	if err != nil {
		return
	}
	if accepted {
		s.notify.SendOnboardingAccepted(org, ob, admin.Email)
	} else {
		s.notify.SendOnboardingRejected(org, ob, admin.Email)
	}
}
