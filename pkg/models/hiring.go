package models

import "time"

type ApplicationStage string

const (
	StageApplied   ApplicationStage = "applied"
	StageScreening ApplicationStage = "screening"
	StageInterview ApplicationStage = "interview"
	StageOffer     ApplicationStage = "offer"
	StageHired     ApplicationStage = "hired"
	StageRejected  ApplicationStage = "rejected"
)

// IsTerminal hired/rejected 之后不再流转
func (s ApplicationStage) IsTerminal() bool {
	return s == StageHired || s == StageRejected
}

// Candidate 招聘候选人（每组织每邮箱唯一）
type Candidate struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`
	Name           string `json:"name" db:"name"`
	Email          string `json:"email" db:"email"`
	Phone          string `json:"phone,omitempty" db:"phone"`

	ResumeURL    string `json:"resume_url,omitempty" db:"resume_url"`
	PortfolioURL string `json:"portfolio_url,omitempty" db:"portfolio_url"`
	LinkedinURL  string `json:"linkedin_url,omitempty" db:"linkedin_url"`
	GithubURL    string `json:"github_url,omitempty" db:"github_url"`

	Source     string `json:"source,omitempty" db:"source"` // website, referral, linkedin, indeed, manual, other
	ReferredBy string `json:"referred_by,omitempty" db:"referred_by"`

	Skills            []string `json:"skills,omitempty" db:"skills"`
	YearsOfExperience int      `json:"years_of_experience,omitempty" db:"years_of_experience"`
	CurrentCompany    string   `json:"current_company,omitempty" db:"current_company"`
	CurrentPosition   string   `json:"current_position,omitempty" db:"current_position"`
	ExpectedSalary    float64  `json:"expected_salary,omitempty" db:"expected_salary"`
	NoticePeriod      string   `json:"notice_period,omitempty" db:"notice_period"`

	Tags     []string `json:"tags,omitempty" db:"tags"`
	Notes    string   `json:"notes,omitempty" db:"notes"`
	IsActive bool     `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TimelineEntry 阶段流转审计日志条目（只追加）
type TimelineEntry struct {
	Stage     ApplicationStage `json:"stage"`
	MovedAt   time.Time        `json:"moved_at"`
	MovedBy   string           `json:"moved_by,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Automated bool             `json:"automated"`
}

// ApplicationNote 申请上的备注
type ApplicationNote struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Application 一次职位申请，贯穿招聘管道
type Application struct {
	ID             string           `json:"id" db:"id"`
	OrganizationID string           `json:"organization_id" db:"organization_id"`
	CandidateID    string           `json:"candidate_id" db:"candidate_id"`
	PositionTitle  string           `json:"position_title" db:"position_title"`
	Department     string           `json:"department,omitempty" db:"department"`
	EmploymentType string           `json:"employment_type,omitempty" db:"employment_type"`
	Stage          ApplicationStage `json:"stage" db:"stage"`
	Timeline       []TimelineEntry  `json:"timeline" db:"timeline"`
	Notes          []ApplicationNote `json:"notes,omitempty" db:"notes"`
	HiredAt        *time.Time       `json:"hired_at,omitempty" db:"hired_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// 关联数据
	Candidate *Candidate `json:"candidate,omitempty"`
}
