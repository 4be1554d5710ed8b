package models

import "time"

type AppointmentStatus string

const (
	AppointmentSent     AppointmentStatus = "sent"
	AppointmentViewed   AppointmentStatus = "viewed"
	AppointmentAccepted AppointmentStatus = "accepted"
	AppointmentRejected AppointmentStatus = "rejected"
)

// IsResponded accept/reject 之后不再接受响应
func (s AppointmentStatus) IsResponded() bool {
	return s == AppointmentAccepted || s == AppointmentRejected
}

// LetterContent 委任函内容
type LetterContent struct {
	Subject     string    `json:"subject"`
	Body        string    `json:"body"` // Rich text HTML
	Position    string    `json:"position"`
	Department  string    `json:"department"`
	JoiningDate time.Time `json:"joining_date"`
	Salary      float64   `json:"salary"`
	Benefits    []string  `json:"benefits,omitempty"`
}

// AppointmentLetter 早期阶段的 offer 确认函（与 Onboarding 并行的流程）
type AppointmentLetter struct {
	ID             string            `json:"id" db:"id"`
	OrganizationID string            `json:"organization_id" db:"organization_id"`
	EmployeeEmail  string            `json:"employee_email" db:"employee_email"`
	EmployeeName   string            `json:"employee_name" db:"employee_name"`
	LetterContent  LetterContent     `json:"letter_content" db:"letter_content"`
	Status         AppointmentStatus `json:"status" db:"status"`

	Token       string    `json:"-" db:"token"`
	TokenExpiry time.Time `json:"token_expiry" db:"token_expiry"`

	SentAt      *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty" db:"viewed_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	Response    string     `json:"response,omitempty" db:"response"` // rejection reason if applicable

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
