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

// AppointmentService 委任函生命周期状态机
// sent → viewed → {accepted, rejected}（viewed 仅为参考，可直接从 sent 响应）
// 接受走事件总线而不是直接编排调用
type AppointmentService struct {
	db     database.DatabaseInterface
	orgs   *OrgService
	notify *NotificationService
	events *EventBus
}

// NewAppointmentService 创建委任函服务
func NewAppointmentService(db database.DatabaseInterface, orgs *OrgService, notify *NotificationService, events *EventBus) *AppointmentService {
	s := &AppointmentService{db: db, orgs: orgs, notify: notify, events: events}
	events.Subscribe(EventAppointmentAccepted, s.onAccepted)
	return s
}

// Send 创建并发送委任函，明文token只在此返回一次
func (s *AppointmentService) Send(orgID string, req models.AppointmentSendRequest, adminID string) (*models.AppointmentLetter, string, error) {
	req.EmployeeEmail = strings.TrimSpace(strings.ToLower(req.EmployeeEmail))
	if req.EmployeeEmail == "" || !strings.Contains(req.EmployeeEmail, "@") {
		return nil, "", wrapErr(ErrValidation, "a valid employee email is required")
	}
	if req.EmployeeName == "" || req.LetterContent.Subject == "" || req.LetterContent.Position == "" {
		return nil, "", wrapErr(ErrValidation, "employee_name, subject and position are required")
	}

	plain, hashed, expiry, err := utils.GenerateLifecycleToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue appointment token: %w", err)
	}

	now := time.Now()
	letter := &models.AppointmentLetter{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		EmployeeEmail:  req.EmployeeEmail,
		EmployeeName:   req.EmployeeName,
		LetterContent:  req.LetterContent,
		Status:         models.AppointmentSent,
		Token:          hashed,
		TokenExpiry:    expiry,
		SentAt:         &now,
		CreatedBy:      adminID,
	}
	if err := s.db.CreateAppointmentLetter(letter); err != nil {
		return nil, "", fmt.Errorf("failed to create appointment letter: %w", err)
	}

	if org, err := s.orgs.GetCachedOrganization(orgID); err == nil {
		s.notify.SendAppointmentLetter(org, letter, plain)
	} else {
		fmt.Printf("WARN: skipping appointment email, org %s unavailable: %v\n", orgID, err)
	}

	return letter, plain, nil
}

func (s *AppointmentService) resolve(plainToken string) (*models.AppointmentLetter, error) {
	if plainToken == "" {
		return nil, wrapErr(ErrValidation, "token is required")
	}
	letter, err := s.db.GetAppointmentLetterByTokenHash(utils.HashToken(plainToken))
	if err != nil {
		return nil, err
	}
	if letter == nil {
		return nil, wrapErr(ErrNotFound, "appointment letter token")
	}
	return letter, nil
}

// AppointmentView 公开端点返回：委任函 + 组织品牌
type AppointmentView struct {
	Letter   *models.AppointmentLetter `json:"letter"`
	Branding models.OrgBranding        `json:"branding"`
}

// MarkAsViewed 幂等：只有 sent → viewed 落库，其余状态原样返回
func (s *AppointmentService) MarkAsViewed(plainToken string) (*AppointmentView, error) {
	letter, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if letter.Status == models.AppointmentSent && utils.IsExpired(letter.TokenExpiry) {
		return nil, wrapErr(ErrExpired, "appointment letter link has expired")
	}

	if letter.Status == models.AppointmentSent {
		now := time.Now()
		letter.Status = models.AppointmentViewed
		letter.ViewedAt = &now
		if err := s.db.UpdateAppointmentLetter(letter); err != nil {
			return nil, fmt.Errorf("failed to mark appointment letter viewed: %w", err)
		}
	}

	branding, err := s.orgs.GetBranding(letter.OrganizationID)
	if err != nil {
		fmt.Printf("WARN: failed to load branding for org %s: %v\n", letter.OrganizationID, err)
		branding = models.OrgBranding{}
	}
	return &AppointmentView{Letter: letter, Branding: branding}, nil
}

// Respond 候选人响应：accept/reject，接受时发布 appointment.accepted 事件
func (s *AppointmentService) Respond(plainToken string, req models.AppointmentResponseRequest) (*models.AppointmentLetter, error) {
	if req.Action != "accept" && req.Action != "reject" {
		return nil, wrapErr(ErrValidation, "action must be accept or reject")
	}

	letter, err := s.resolve(plainToken)
	if err != nil {
		return nil, err
	}
	if letter.Status.IsResponded() {
		return nil, wrapErr(ErrConflict, "appointment letter has already been responded to")
	}
	if utils.IsExpired(letter.TokenExpiry) {
		return nil, wrapErr(ErrExpired, "appointment letter link has expired")
	}

	now := time.Now()
	letter.RespondedAt = &now
	if req.Action == "accept" {
		letter.Status = models.AppointmentAccepted
	} else {
		letter.Status = models.AppointmentRejected
		letter.Response = req.Reason
	}
	if err := s.db.UpdateAppointmentLetter(letter); err != nil {
		return nil, fmt.Errorf("failed to respond to appointment letter: %w", err)
	}

	topic := EventAppointmentRejected
	if req.Action == "accept" {
		topic = EventAppointmentAccepted
	}
	s.events.Publish(Event{
		Topic:          topic,
		OrganizationID: letter.OrganizationID,
		EntityID:       letter.ID,
		Payload:        map[string]interface{}{"employee_email": letter.EmployeeEmail},
	})

	return letter, nil
}

// onAccepted 接受事件订阅者：发确认邮件，失败只记录
func (s *AppointmentService) onAccepted(e Event) error {
	letter, err := s.db.GetAppointmentLetterByID(e.EntityID)
	if err != nil || letter == nil {
		return fmt.Errorf("appointment letter %s unavailable: %v", e.EntityID, err)
	}
	org, err := s.orgs.GetCachedOrganization(e.OrganizationID)
	if err != nil {
		return err
	}
	s.notify.SendAppointmentAcceptedConfirmation(org, letter)
	return nil
}

// GetLetter 管理端按ID读取（组织范围内）
func (s *AppointmentService) GetLetter(id, orgID string) (*models.AppointmentLetter, error) {
	letter, err := s.db.GetAppointmentLetterByID(id)
	if err != nil {
		return nil, err
	}
	if letter == nil {
		return nil, wrapErr(ErrNotFound, "appointment letter %s", id)
	}
	if letter.OrganizationID != orgID {
		return nil, wrapErr(ErrForbidden, "appointment letter belongs to another organization")
	}
	return letter, nil
}

// ListLetters 管理端分页列表
func (s *AppointmentService) ListLetters(q database.ListQuery) ([]models.AppointmentLetter, int, error) {
	return s.db.ListAppointmentLetters(q)
}
