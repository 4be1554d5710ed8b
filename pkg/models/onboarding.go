package models

import "time"

type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "pending"
	OnboardingAccepted  OnboardingStatus = "accepted"
	OnboardingRejected  OnboardingStatus = "rejected"
	OnboardingCompleted OnboardingStatus = "completed"
	OnboardingExpired   OnboardingStatus = "expired"
	OnboardingRevoked   OnboardingStatus = "revoked"
)

// IsTerminal 终态判断：pending 和 accepted 之外的状态不再接受任何流转
func (s OnboardingStatus) IsTerminal() bool {
	return s != OnboardingPending && s != OnboardingAccepted
}

// OfferDetails is the offer snapshot captured at creation time
type OfferDetails struct {
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Department  string    `json:"department,omitempty"`
	Salary      float64   `json:"salary"`
	JoiningDate time.Time `json:"joining_date"`
	Phone       string    `json:"phone"`
}

// Onboarding 一次从发 offer 到入职完成的生命周期记录
type Onboarding struct {
	ID             string           `json:"id" db:"id"`
	OrganizationID string           `json:"organization_id" db:"organization_id"`
	EmployeeID     string           `json:"employee_id" db:"employee_id"`
	OfferDetails   OfferDetails     `json:"offer_details" db:"offer_details"`
	Status         OnboardingStatus `json:"status" db:"status"`

	// Token 只存 SHA-256 哈希，明文仅在签发时返回一次
	Token       string    `json:"-" db:"token"`
	TokenExpiry time.Time `json:"token_expiry" db:"token_expiry"`

	RespondedAt      *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	RevokedBy        string     `json:"revoked_by,omitempty" db:"revoked_by"`
	RejectionReason  string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RevocationReason string     `json:"revocation_reason,omitempty" db:"revocation_reason"`

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTokenExpired 逻辑过期判断（惰性过期在 resolve 时落库）
func (o *Onboarding) IsTokenExpired() bool {
	return o.TokenExpiry.Before(time.Now())
}
