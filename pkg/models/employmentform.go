package models

import "time"

type EmploymentFormStatus string

const (
	FormDraft         EmploymentFormStatus = "draft"
	FormPendingReview EmploymentFormStatus = "pending_review"
	FormApproved      EmploymentFormStatus = "approved"
	FormRejected      EmploymentFormStatus = "rejected"
	FormNeedsRevision EmploymentFormStatus = "needs_revision"
)

// IsEditable 候选人是否仍可填写/重新提交
func (s EmploymentFormStatus) IsEditable() bool {
	return s == FormDraft || s == FormNeedsRevision
}

// PersonalInfo 候选人个人信息块
type PersonalInfo struct {
	Photo         string     `json:"photo,omitempty"`
	LegalName     string     `json:"legal_name,omitempty"`
	FatherName    string     `json:"father_name,omitempty"`
	GuardianName  string     `json:"guardian_name,omitempty"`
	GuardianCNIC  string     `json:"guardian_cnic,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	MaritalStatus string     `json:"marital_status,omitempty"`
}

// CnicInfo 身份证信息块
type CnicInfo struct {
	CnicNumber     string     `json:"cnic_number,omitempty"`
	CnicFrontImage string     `json:"cnic_front_image,omitempty"`
	CnicBackImage  string     `json:"cnic_back_image,omitempty"`
	CnicIssueDate  *time.Time `json:"cnic_issue_date,omitempty"`
	CnicExpiryDate *time.Time `json:"cnic_expiry_date,omitempty"`
}

// ContactInfo 联系方式块
type ContactInfo struct {
	Phone            string           `json:"phone,omitempty"`
	AlternatePhone   string           `json:"alternate_phone,omitempty"`
	Email            string           `json:"email"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
}

// FormAddresses 主/备地址
type FormAddresses struct {
	PrimaryAddress   Address `json:"primary_address"`
	SecondaryAddress Address `json:"secondary_address"`
}

// AcceptedPolicy 候选人确认过的公司政策
type AcceptedPolicy struct {
	PolicyID    string    `json:"policy_id"`
	PolicyTitle string    `json:"policy_title"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// FormAccount 提交表单时附带的账号设置数据
type FormAccount struct {
	Password string `json:"password,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

// EmploymentForm collects personal/legal/contact data from the candidate.
// draft 状态不强制必填字段；提交进入 pending_review 时校验。
type EmploymentForm struct {
	ID                  string               `json:"id" db:"id"`
	OrganizationID      string               `json:"organization_id" db:"organization_id"`
	AppointmentLetterID string               `json:"appointment_letter_id,omitempty" db:"appointment_letter_id"`
	EmployeeEmail       string               `json:"employee_email" db:"employee_email"`
	Status              EmploymentFormStatus `json:"status" db:"status"`

	PersonalInfo     PersonalInfo     `json:"personal_info" db:"personal_info"`
	CnicInfo         CnicInfo         `json:"cnic_info" db:"cnic_info"`
	ContactInfo      ContactInfo      `json:"contact_info" db:"contact_info"`
	Addresses        FormAddresses    `json:"addresses" db:"addresses"`
	AcceptedPolicies []AcceptedPolicy `json:"accepted_policies" db:"accepted_policies"`

	// Token 只存 SHA-256 哈希
	Token       string    `json:"-" db:"token"`
	TokenExpiry time.Time `json:"token_expiry" db:"token_expiry"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy  string     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNotes string     `json:"review_notes,omitempty" db:"review_notes"`
	// requestRevision 指定需要修改的字段列表
	RevisionFields []string `json:"revision_fields,omitempty" db:"revision_fields"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTokenExpired 逻辑过期判断
func (f *EmploymentForm) IsTokenExpired() bool {
	return f.TokenExpiry.Before(time.Now())
}

// EmploymentFormSubmission 候选人通过 token 提交的数据
type EmploymentFormSubmission struct {
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	CnicInfo         CnicInfo         `json:"cnic_info"`
	ContactInfo      ContactInfo      `json:"contact_info"`
	Addresses        FormAddresses    `json:"addresses"`
	AcceptedPolicies []AcceptedPolicy `json:"accepted_policies"`
	Account          FormAccount      `json:"account"`
}
