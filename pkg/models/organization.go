package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Organization 租户：所有业务数据的归属边界
type Organization struct {
	ID          string    `json:"id" db:"id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	Slug        string    `json:"slug" db:"slug"`
	Logo        string    `json:"logo,omitempty" db:"logo"`
	Industry    string    `json:"industry,omitempty" db:"industry"`
	Theme       OrgTheme  `json:"theme" db:"theme"`
	Address     Address   `json:"address" db:"address"`

	Subscription OrgSubscription `json:"subscription" db:"subscription"`
	Departments  []Department    `json:"departments" db:"departments"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrgTheme 品牌主题（公开 token 页与邮件使用）
type OrgTheme struct {
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	AccentColor    string `json:"accent_color,omitempty"`
	DarkMode       bool   `json:"dark_mode"`
}

// OrgSubscription 订阅状态，组织上下文中间件据此放行/拦截
type OrgSubscription struct {
	Plan      string             `json:"plan,omitempty"`
	Status    SubscriptionStatus `json:"status"`
	UserLimit int                `json:"user_limit,omitempty"`
}

// Department 组织内部门
type Department struct {
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	HeadOfDepartment string    `json:"head_of_department,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// OrgBranding is the minimal branding view attached to public token responses
type OrgBranding struct {
	CompanyName string   `json:"company_name"`
	Logo        string   `json:"logo,omitempty"`
	Theme       OrgTheme `json:"theme"`
}

// Branding 提取公开响应用的最小品牌信息
func (o *Organization) Branding() OrgBranding {
	return OrgBranding{
		CompanyName: o.CompanyName,
		Logo:        o.Logo,
		Theme:       o.Theme,
	}
}
