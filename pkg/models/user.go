package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole 用户角色
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleEmployee   UserRole = "employee"
)

// User represents an account in the system (admins and employees)
type User struct {
	ID              string   `json:"id" db:"id"`
	OrganizationID  string   `json:"organization_id" db:"organization_id"`
	Email           string   `json:"email" db:"email"`
	Password        string   `json:"-" db:"password_hash"` // Never return password in JSON
	FullName        string   `json:"full_name,omitempty" db:"full_name"`
	Role            UserRole `json:"role" db:"role"`
	Designation     string   `json:"designation,omitempty" db:"designation"`
	Department      string   `json:"department,omitempty" db:"department"`
	IsActive        bool     `json:"is_active" db:"is_active"`
	IsEmailVerified bool     `json:"is_email_verified" db:"is_email_verified"`

	Profile          UserProfile      `json:"profile" db:"profile"`
	SocialLinks      SocialLinks      `json:"social_links" db:"social_links"`
	Address          Address          `json:"address" db:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact" db:"emergency_contact"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty" db:"date_of_birth"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile 员工档案附件
type UserProfile struct {
	Avatar    string `json:"avatar,omitempty"`
	CnicImage string `json:"cnic_image,omitempty"`
}

// SocialLinks 员工社交链接（入职完成时至少需要一个）
type SocialLinks struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

// Address 通用地址块
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// EmergencyContact 紧急联系人
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// UserLoginRequest represents the request payload for login
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserLoginResponse represents the response payload for login
type UserLoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OrgID        string `json:"org_id,omitempty"`
}

// RefreshTokenRequest represents the request payload for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenClaims represents the JWT session token claims
type TokenClaims struct {
	UserID         string   `json:"user_id"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	OrganizationID string   `json:"organization_id,omitempty"`
	Type           string   `json:"type"` // "access" or "refresh"
	Exp            int64    `json:"exp"`
	Iat            int64    `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
