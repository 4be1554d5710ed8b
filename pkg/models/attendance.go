package models

import "time"

// AttendanceRecord 考勤记录（简单 CRUD 卫星模块）
type AttendanceRecord struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	UserID         string     `json:"user_id" db:"user_id"`
	Date           string     `json:"date" db:"date"` // YYYY-MM-DD
	CheckInAt      time.Time  `json:"check_in_at" db:"check_in_at"`
	CheckOutAt     *time.Time `json:"check_out_at,omitempty" db:"check_out_at"`
	Notes          string     `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
