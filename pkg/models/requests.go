package models

import "time"

// CreateEmployeeRequest 管理员发起入职的载荷
type CreateEmployeeRequest struct {
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Department  string    `json:"department,omitempty"`
	Salary      float64   `json:"salary"`
	JoiningDate time.Time `json:"joining_date"`
	Phone       string    `json:"phone"`
}

// ProfileCompletion 候选人完成入职时的载荷
type ProfileCompletion struct {
	Password         string           `json:"password"`
	Github           string           `json:"github,omitempty"`
	Linkedin         string           `json:"linkedin,omitempty"`
	Avatar           string           `json:"avatar,omitempty"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
}

// ReviewRequest 管理员审核雇佣信息表的载荷
type ReviewRequest struct {
	Status string `json:"status"` // "approved" or "rejected"
	Notes  string `json:"notes,omitempty"`
}

// RevisionRequest 管理员要求修改表单的载荷
type RevisionRequest struct {
	Notes  string   `json:"notes,omitempty"`
	Fields []string `json:"fields"`
}

// AppointmentSendRequest 发送委任函的载荷
type AppointmentSendRequest struct {
	EmployeeEmail string        `json:"employee_email"`
	EmployeeName  string        `json:"employee_name"`
	LetterContent LetterContent `json:"letter_content"`
}

// AppointmentResponseRequest 候选人响应委任函的载荷
type AppointmentResponseRequest struct {
	Action string `json:"action"` // "accept" or "reject"
	Reason string `json:"reason,omitempty"`
}

// StageMoveRequest 招聘阶段流转载荷
type StageMoveRequest struct {
	Stage ApplicationStage `json:"stage"`
	Notes string           `json:"notes,omitempty"`
}

// ContractCreateRequest 创建合同的载荷
type ContractCreateRequest struct {
	EmploymentFormID string          `json:"employment_form_id"`
	ContractDetails  ContractDetails `json:"contract_details"`
}
