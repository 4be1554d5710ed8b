package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// Mailer 邮件发送接口
// 所有生命周期通知都走这里；失败只记录，不阻塞业务流程
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// NewMailer 根据配置选择实现：SMTP 未配置时退回日志模式
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// SMTPMailer 通过SMTP发送邮件
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// Send 发送一封HTML邮件
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// LogMailer 开发环境实现：只打印，不发送
type LogMailer struct{}

// Send 打印邮件内容到标准输出
func (m *LogMailer) Send(to, subject, htmlBody string) error {
	fmt.Printf("MAIL [dev] to=%s subject=%q\n%s\n", to, subject, htmlBody)
	return nil
}

// NotificationService 组装生命周期通知邮件
// 品牌信息来自组织，token 链接指向前端
type NotificationService struct {
	mailer      Mailer
	frontendURL string
}

// NewNotificationService 创建通知服务
func NewNotificationService(mailer Mailer, frontendURL string) *NotificationService {
	return &NotificationService{
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// sendBranded 发送带组织品牌的邮件，失败只记录
func (n *NotificationService) sendBranded(branding models.OrgBranding, to, subject, body string) {
	company := branding.CompanyName
	if company == "" {
		company = "HR Team"
	}
	html := fmt.Sprintf(`<div style="font-family:sans-serif">
<h2 style="color:%s">%s</h2>
%s
<p style="color:#888;font-size:12px">This message was sent by %s.</p>
</div>`, branding.Theme.PrimaryColor, company, body, company)

	if err := n.mailer.Send(to, subject, html); err != nil {
		fmt.Printf("ERROR: failed to send notification %q to %s: %v\n", subject, to, err)
	}
}

// SendOnboardingInvite 发 offer 通知，附带 token 链接
func (n *NotificationService) SendOnboardingInvite(org *models.Organization, ob *models.Onboarding, plainToken string) {
	link := fmt.Sprintf("%s/onboarding/%s", n.frontendURL, plainToken)
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>You have been offered the position of <b>%s</b>. Please review and respond to your offer using the link below. The link expires in 7 days.</p>
<p><a href="%s">View your offer</a></p>`,
		ob.OfferDetails.FullName, ob.OfferDetails.Designation, link)
	n.sendBranded(org.Branding(), ob.OfferDetails.Email, "Your job offer from "+org.CompanyName, body)
}

// SendOnboardingAccepted 通知管理员候选人已接受
func (n *NotificationService) SendOnboardingAccepted(org *models.Organization, ob *models.Onboarding, adminEmail string) {
	if adminEmail == "" {
		return
	}
	body := fmt.Sprintf(`<p>%s has accepted the offer for <b>%s</b>. An employment form has been issued to the candidate.</p>`,
		ob.OfferDetails.FullName, ob.OfferDetails.Designation)
	n.sendBranded(org.Branding(), adminEmail, "Offer accepted: "+ob.OfferDetails.FullName, body)
}

// SendOnboardingRejected 通知管理员候选人已拒绝
func (n *NotificationService) SendOnboardingRejected(org *models.Organization, ob *models.Onboarding, adminEmail string) {
	if adminEmail == "" {
		return
	}
	body := fmt.Sprintf(`<p>%s has declined the offer for <b>%s</b>.</p><p>Reason: %s</p>`,
		ob.OfferDetails.FullName, ob.OfferDetails.Designation, ob.RejectionReason)
	n.sendBranded(org.Branding(), adminEmail, "Offer declined: "+ob.OfferDetails.FullName, body)
}

// SendEmploymentFormRequest 给候选人发表单填写链接
func (n *NotificationService) SendEmploymentFormRequest(org *models.Organization, email, plainToken string) {
	link := fmt.Sprintf("%s/employment-form/%s", n.frontendURL, plainToken)
	body := fmt.Sprintf(`<p>Please complete your employment form to continue your onboarding with %s. The link expires in 7 days.</p>
<p><a href="%s">Complete your employment form</a></p>`, org.CompanyName, link)
	n.sendBranded(org.Branding(), email, "Complete your employment form", body)
}

// SendApprovalNextSteps 表单审核通过后的后续步骤说明
func (n *NotificationService) SendApprovalNextSteps(org *models.Organization, email string) {
	body := `<p>Your employment form has been approved. Here is what happens next:</p>
<ul>
<li>HR will prepare your appointment letter and employment contract.</li>
<li>You will receive a signing link by email once the contract is ready.</li>
<li>Your account credentials will be activated after signing.</li>
</ul>`
	n.sendBranded(org.Branding(), email, "Your employment form has been approved", body)
}

// SendFormRevisionRequested 通知候选人需要修改表单
func (n *NotificationService) SendFormRevisionRequested(org *models.Organization, form *models.EmploymentForm, plainToken string) {
	link := fmt.Sprintf("%s/employment-form/%s", n.frontendURL, plainToken)
	fields := strings.Join(form.RevisionFields, ", ")
	body := fmt.Sprintf(`<p>Your employment form needs some changes before it can be approved.</p>
<p>Fields to revise: <b>%s</b></p>
<p>Notes: %s</p>
<p><a href="%s">Update your form</a></p>`, fields, form.ReviewNotes, link)
	n.sendBranded(org.Branding(), form.EmployeeEmail, "Your employment form needs revision", body)
}

// SendContractIssued 发合同签署链接
func (n *NotificationService) SendContractIssued(org *models.Organization, contract *models.EmploymentContract, email, plainToken string) {
	link := fmt.Sprintf("%s/contract/%s", n.frontendURL, plainToken)
	body := fmt.Sprintf(`<p>Your employment contract for <b>%s</b> is ready to sign. The link expires in 7 days.</p>
<p><a href="%s">Review and sign your contract</a></p>`, contract.ContractDetails.Position, link)
	n.sendBranded(org.Branding(), email, "Your employment contract from "+org.CompanyName, body)
}

// SendAppointmentLetter 发委任函链接
func (n *NotificationService) SendAppointmentLetter(org *models.Organization, letter *models.AppointmentLetter, plainToken string) {
	link := fmt.Sprintf("%s/appointment/%s", n.frontendURL, plainToken)
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>%s</p>
<p><a href="%s">View your appointment letter</a></p>`, letter.EmployeeName, letter.LetterContent.Subject, link)
	n.sendBranded(org.Branding(), letter.EmployeeEmail, letter.LetterContent.Subject, body)
}

// SendAppointmentAcceptedConfirmation 委任函接受后的确认邮件（事件订阅者触发）
func (n *NotificationService) SendAppointmentAcceptedConfirmation(org *models.Organization, letter *models.AppointmentLetter) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Thank you for accepting your appointment as <b>%s</b>. HR will follow up with your employment documents shortly.</p>`,
		letter.EmployeeName, letter.LetterContent.Position)
	n.sendBranded(org.Branding(), letter.EmployeeEmail, "Appointment confirmed", body)
}

// SendCandidateAcknowledgement 候选人建档确认邮件
func (n *NotificationService) SendCandidateAcknowledgement(org *models.Organization, candidate *models.Candidate) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>We have received your application and our team will review it shortly.</p>`, candidate.Name)
	n.sendBranded(org.Branding(), candidate.Email, "We received your application", body)
}

// SendWelcome 入职完成欢迎邮件
func (n *NotificationService) SendWelcome(org *models.Organization, email, fullName string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your onboarding with %s is complete. Welcome aboard! You can now sign in to your account.</p>`, fullName, org.CompanyName)
	n.sendBranded(org.Branding(), email, "Welcome to "+org.CompanyName, body)
}
