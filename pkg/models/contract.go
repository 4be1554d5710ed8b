package models

import "time"

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractSent       ContractStatus = "sent"
	ContractSigned     ContractStatus = "signed"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
)

// IsSignable 签署 token 只在 draft/sent 状态可解析
func (s ContractStatus) IsSignable() bool {
	return s == ContractDraft || s == ContractSent
}

// Allowance 补贴项
type Allowance struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// Compensation 薪酬条款
type Compensation struct {
	BaseSalary       float64     `json:"base_salary"`
	Allowances       []Allowance `json:"allowances,omitempty"`
	Bonuses          string      `json:"bonuses,omitempty"`
	PaymentFrequency string      `json:"payment_frequency,omitempty"` // monthly, bi-weekly, weekly
}

// WorkingHours 工时条款
type WorkingHours struct {
	HoursPerWeek int    `json:"hours_per_week,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
}

// ContractDetails 合同条款主体
type ContractDetails struct {
	Position           string       `json:"position"`
	Department         string       `json:"department"`
	EmploymentType     string       `json:"employment_type"` // full-time, part-time, contract
	StartDate          time.Time    `json:"start_date"`
	ProbationPeriod    int          `json:"probation_period,omitempty"` // months
	Compensation       Compensation `json:"compensation"`
	WorkingHours       WorkingHours `json:"working_hours"`
	Benefits           []string     `json:"benefits,omitempty"`
	LeavePolicies      string       `json:"leave_policies,omitempty"`
	NoticePeriod       int          `json:"notice_period,omitempty"` // days
	TermsAndConditions string       `json:"terms_and_conditions,omitempty"`
}

// Signature 合同上的一条签名记录
type Signature struct {
	SignedBy       string    `json:"signed_by"` // "employee" or "employer"
	SignerName     string    `json:"signer_name"`
	SignerEmail    string    `json:"signer_email"`
	SignatureImage string    `json:"signature_image,omitempty"`
	SignedAt       time.Time `json:"signed_at"`
	IPAddress      string    `json:"ip_address,omitempty"`
}

// EmploymentContract 需要电子签署的雇佣合同
type EmploymentContract struct {
	ID               string          `json:"id" db:"id"`
	OrganizationID   string          `json:"organization_id" db:"organization_id"`
	EmploymentFormID string          `json:"employment_form_id" db:"employment_form_id"`
	EmployeeID       string          `json:"employee_id,omitempty" db:"employee_id"` // absent until signed
	ContractDetails  ContractDetails `json:"contract_details" db:"contract_details"`
	Signatures       []Signature     `json:"signatures" db:"signatures"`
	Status           ContractStatus  `json:"status" db:"status"`

	// 签署 token 同样只存 SHA-256 哈希
	SigningToken string    `json:"-" db:"signing_token"`
	TokenExpiry  time.Time `json:"token_expiry" db:"token_expiry"`

	SentAt            *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	SignedAt          *time.Time `json:"signed_at,omitempty" db:"signed_at"`
	TerminatedAt      *time.Time `json:"terminated_at,omitempty" db:"terminated_at"`
	TerminationReason string     `json:"termination_reason,omitempty" db:"termination_reason"`

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTokenExpired 逻辑过期判断
func (c *EmploymentContract) IsTokenExpired() bool {
	return c.TokenExpiry.Before(time.Now())
}

// SignatureRequest 候选人签署合同的载荷
type SignatureRequest struct {
	EmployeeName      string `json:"employee_name"`
	EmployeeEmail     string `json:"employee_email"`
	EmployeeSignature string `json:"employee_signature"`
	IPAddress         string `json:"-"`
}
