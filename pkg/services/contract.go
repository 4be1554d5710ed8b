package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// ContractService 雇佣合同生命周期状态机
// draft → sent → signed → completed；terminated 可从任何未完成状态进入
type ContractService struct {
	db     database.DatabaseInterface
	orgs   *OrgService
	notify *NotificationService
	events *EventBus
}

// NewContractService 创建合同服务
func NewContractService(db database.DatabaseInterface, orgs *OrgService, notify *NotificationService, events *EventBus) *ContractService {
	return &ContractService{db: db, orgs: orgs, notify: notify, events: events}
}

// Create 从已审批的表单创建 draft 合同，签发签署token
// 明文token只在此返回一次
func (s *ContractService) Create(orgID string, req models.ContractCreateRequest, adminID string) (*models.EmploymentContract, string, error) {
	if req.EmploymentFormID == "" {
		return nil, "", wrapErr(ErrValidation, "employment_form_id is required")
	}
	if req.ContractDetails.Position == "" {
		return nil, "", wrapErr(ErrValidation, "contract position is required")
	}

	form, err := s.db.GetEmploymentFormByID(req.EmploymentFormID)
	if err != nil {
		return nil, "", err
	}
	if form == nil || form.OrganizationID != orgID {
		return nil, "", wrapErr(ErrNotFound, "employment form %s", req.EmploymentFormID)
	}
	if form.Status != models.FormApproved {
		return nil, "", wrapErr(ErrDependency, "contract requires an approved employment form, current status %s", form.Status)
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue signing token: %w", err)
	}

	contract := &models.EmploymentContract{
		ID:               uuid.New().String(),
		OrganizationID:   orgID,
		EmploymentFormID: form.ID,
		ContractDetails:  req.ContractDetails,
		Signatures:       []models.Signature{},
		Status:           models.ContractDraft,
		SigningToken:     hashed,
		TokenExpiry:      expiry,
		CreatedBy:        adminID,
	}
	if err := s.db.CreateContract(contract); err != nil {
		return nil, "", fmt.Errorf("failed to create contract: %w", err)
	}
	return contract, plain, nil
}

// Send draft → sent，轮换token拿到明文以便发签署链接
// 邮件尽力发送，失败不回退 sent 状态
func (s *ContractService) Send(id, orgID string) (*models.EmploymentContract, string, error) {
	contract, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, "", err
	}
	if contract.Status != models.ContractDraft {
		return nil, "", wrapErr(ErrConflict, "contract cannot be sent from status %s", contract.Status)
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue signing token: %w", err)
	}

	now := time.Now()
	contract.Status = models.ContractSent
	contract.SentAt = &now
	contract.SigningToken = hashed
	contract.TokenExpiry = expiry
	if err := s.db.UpdateContract(contract); err != nil {
		return nil, "", fmt.Errorf("failed to send contract: %w", err)
	}

	form, err := s.db.GetEmploymentFormByID(contract.EmploymentFormID)
	if err == nil && form != nil {
		if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
			s.notify.SendContractIssued(org, contract, form.EmployeeEmail, plain)
		}
	} else {
		fmt.Printf("WARN: contract %s sent but recipient email unavailable: %v\n", contract.ID, err)
	}

	return contract, plain, nil
}

func (s *ContractService) resolve(plainToken string) (*models.EmploymentContract, error) {
	if plainToken == "" {
		return nil, wrapErr(ErrValidation, "token is required")
	}
	contract, err := s.db.GetContractByTokenHash(utils.HashToken(plainToken))
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, wrapErr(ErrNotFound, "contract token")
	}
	return contract, nil
}

// ContractDetailsView 公开端点返回：合同 + 组织品牌
type ContractDetailsView struct {
	Contract *models.EmploymentContract `json:"contract"`
	Branding models.OrgBranding         `json:"branding"`
}

// GetByToken 签署token只在 draft|sent 且未过期时可解析
func (s *ContractService) GetByToken(plainToken string) (*ContractDetailsView, error) {
	contract, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractSigned || contract.Status == models.ContractCompleted {
		return nil, wrapErr(ErrConflict, "contract has already been signed")
	}
	if !contract.Status.IsSignable() {
		return nil, wrapErr(ErrNotFound, "contract token")
	}
	if contract.IsTokenExpired() {
		return nil, wrapErr(ErrExpired, "signing link has expired")
	}

	branding, err := s.orgs.GetBranding(contract.OrganizationID)
	if err != nil {
		fmt.Printf("WARN: failed to load branding for org %s: %v\n", contract.OrganizationID, err)
		branding = models.OrgBranding{}
	}
	return &ContractDetailsView{Contract: contract, Branding: branding}, nil
}

// Sign 候选人签署：追加 employee 签名并置 signed
// signed 不可重签（即使 token 范围已排除，这里再挡一层）
func (s *ContractService) Sign(plainToken string, req models.SignatureRequest) (*models.EmploymentContract, error) {
	contract, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractSigned || contract.Status == models.ContractCompleted {
		return nil, wrapErr(ErrConflict, "contract has already been signed")
	}
	if !contract.Status.IsSignable() {
		return nil, wrapErr(ErrNotFound, "contract token")
	}
	if contract.IsTokenExpired() {
		return nil, wrapErr(ErrExpired, "signing link has expired")
	}
	if req.EmployeeName == "" || req.EmployeeSignature == "" {
		return nil, wrapErr(ErrValidation, "employee_name and employee_signature are required")
	}

	now := time.Now()
	contract.Signatures = append(contract.Signatures, models.Signature{
		SignedBy:       "employee",
		SignerName:     req.EmployeeName,
		SignerEmail:    req.EmployeeEmail,
		SignatureImage: req.EmployeeSignature,
		SignedAt:       now,
		IPAddress:      req.IPAddress,
	})
	contract.Status = models.ContractSigned
	contract.SignedAt = &now

	// 签署后把合同挂到员工账号上
	if user, err := s.db.GetUserByEmail(contract.OrganizationID, req.EmployeeEmail); err == nil && user != nil {
		contract.EmployeeID = user.ID
	}

	if err := s.db.UpdateContract(contract); err != nil {
		return nil, fmt.Errorf("failed to sign contract: %w", err)
	}

	s.events.Publish(Event{
		Topic:          EventContractSigned,
		OrganizationID: contract.OrganizationID,
		EntityID:       contract.ID,
		Payload:        map[string]interface{}{"employee_email": req.EmployeeEmail},
	})
	return contract, nil
}

// Complete signed → completed（管理员归档动作）
func (s *ContractService) Complete(id, orgID string) (*models.EmploymentContract, error) {
	contract, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractSigned {
		return nil, wrapErr(ErrConflict, "contract cannot be completed from status %s", contract.Status)
	}
	contract.Status = models.ContractCompleted
	if err := s.db.UpdateContract(contract); err != nil {
		return nil, fmt.Errorf("failed to complete contract: %w", err)
	}
	return contract, nil
}

// Terminate 任何未完成状态 → terminated
func (s *ContractService) Terminate(id, orgID, reason string) (*models.EmploymentContract, error) {
	contract, err := s.getScoped(id, orgID)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractCompleted || contract.Status == models.ContractTerminated {
		return nil, wrapErr(ErrConflict, "contract cannot be terminated from status %s", contract.Status)
	}

	now := time.Now()
	contract.Status = models.ContractTerminated
	contract.TerminatedAt = &now
	contract.TerminationReason = reason
	if err := s.db.UpdateContract(contract); err != nil {
		return nil, fmt.Errorf("failed to terminate contract: %w", err)
	}
	return contract, nil
}

// GetContract 管理端按ID读取（组织范围内）
func (s *ContractService) GetContract(id, orgID string) (*models.EmploymentContract, error) {
	return s.getScoped(id, orgID)
}

// ListContracts 管理端分页列表
func (s *ContractService) ListContracts(q database.ListQuery) ([]models.EmploymentContract, int, error) {
	return s.db.ListContracts(q)
}

func (s *ContractService) getScoped(id, orgID string) (*models.EmploymentContract, error) {
	contract, err := s.db.GetContractByID(id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, wrapErr(ErrNotFound, "contract %s", id)
	}
	if contract.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "contract belongs to another organization")
	}
	return contract, nil
}
