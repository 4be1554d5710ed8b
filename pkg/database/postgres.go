package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"

	_ "github.com/lib/pq"
)

// PostgresDatabase PostgreSQL数据库实现
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(dsn string) DatabaseInterface {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to open PostgreSQL connection: %v", err))
	}

	// 设置连接池参数，适合无服务器环境
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		panic(fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}

	fmt.Println("PostgreSQL connection established successfully")
	return &PostgresDatabase{db: db}
}

// 私有辅助方法

// mustJSON 序列化JSONB字段，失败时退回空对象
func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func unmarshalJSON(data []byte, v interface{}) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// ==== Users ====

// CreateUser 创建用户
func (db *PostgresDatabase) CreateUser(user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}

	query := `
		INSERT INTO users (id, organization_id, email, password_hash, full_name, role,
			designation, department, is_active, is_email_verified,
			profile, social_links, address, emergency_contact, date_of_birth,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		user.ID, user.OrganizationID, user.Email, user.Password, user.FullName, user.Role,
		user.Designation, user.Department, user.IsActive, user.IsEmailVerified,
		mustJSON(user.Profile), mustJSON(user.SocialLinks), mustJSON(user.Address),
		mustJSON(user.EmergencyContact), nullTime(user.DateOfBirth),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("user already exists with this email")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `id, organization_id, email, COALESCE(password_hash,''), COALESCE(full_name,''), role,
	COALESCE(designation,''), COALESCE(department,''), is_active, is_email_verified,
	profile, social_links, address, emergency_contact, date_of_birth, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	var profile, socialLinks, address, emergency []byte
	var dob sql.NullTime

	err := row.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Password, &user.FullName,
		&user.Role, &user.Designation, &user.Department, &user.IsActive, &user.IsEmailVerified,
		&profile, &socialLinks, &address, &emergency, &dob, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(profile, &user.Profile)
	unmarshalJSON(socialLinks, &user.SocialLinks)
	unmarshalJSON(address, &user.Address)
	unmarshalJSON(emergency, &user.EmergencyContact)
	user.DateOfBirth = timePtr(dob)
	return &user, nil
}

// GetUserByEmail 根据组织和邮箱获取用户
func (db *PostgresDatabase) GetUserByEmail(orgID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 AND LOWER(email) = LOWER($2)`
	return scanUser(db.db.QueryRow(query, orgID, email))
}

// FindUserByEmail 跨组织按邮箱查找用户
func (db *PostgresDatabase) FindUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	return scanUser(db.db.QueryRow(query, email))
}

// GetUserByID 根据ID获取用户
func (db *PostgresDatabase) GetUserByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.db.QueryRow(query, id))
}

// UpdateUser 更新用户
func (db *PostgresDatabase) UpdateUser(user *models.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, full_name = $4, role = $5,
			designation = $6, department = $7, is_active = $8, is_email_verified = $9,
			profile = $10, social_links = $11, address = $12, emergency_contact = $13,
			date_of_birth = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		user.ID, user.Email, user.Password, user.FullName, user.Role,
		user.Designation, user.Department, user.IsActive, user.IsEmailVerified,
		mustJSON(user.Profile), mustJSON(user.SocialLinks), mustJSON(user.Address),
		mustJSON(user.EmergencyContact), nullTime(user.DateOfBirth),
	).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser 删除用户
func (db *PostgresDatabase) DeleteUser(id string) error {
	result, err := db.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// ==== Organizations ====

// CreateOrganization 创建组织
func (db *PostgresDatabase) CreateOrganization(org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, company_name, slug, logo, industry, theme, address,
			subscription, departments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		org.ID, org.CompanyName, org.Slug, org.Logo, org.Industry,
		mustJSON(org.Theme), mustJSON(org.Address), mustJSON(org.Subscription),
		mustJSON(org.Departments),
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetOrganization 根据ID获取组织
func (db *PostgresDatabase) GetOrganization(orgID string) (*models.Organization, error) {
	query := `
		SELECT id, company_name, slug, COALESCE(logo,''), COALESCE(industry,''),
			theme, address, subscription, departments, created_at, updated_at
		FROM organizations WHERE id = $1
	`
	var org models.Organization
	var theme, address, subscription, departments []byte

	err := db.db.QueryRow(query, orgID).Scan(&org.ID, &org.CompanyName, &org.Slug,
		&org.Logo, &org.Industry, &theme, &address, &subscription, &departments,
		&org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	unmarshalJSON(theme, &org.Theme)
	unmarshalJSON(address, &org.Address)
	unmarshalJSON(subscription, &org.Subscription)
	unmarshalJSON(departments, &org.Departments)
	return &org, nil
}

// UpdateOrganization 更新组织
func (db *PostgresDatabase) UpdateOrganization(org *models.Organization) error {
	query := `
		UPDATE organizations SET company_name = $2, slug = $3, logo = $4, industry = $5,
			theme = $6, address = $7, subscription = $8, departments = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		org.ID, org.CompanyName, org.Slug, org.Logo, org.Industry,
		mustJSON(org.Theme), mustJSON(org.Address), mustJSON(org.Subscription),
		mustJSON(org.Departments),
	).Scan(&org.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("organization not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

// ==== Onboardings ====

const onboardingColumns = `id, organization_id, COALESCE(employee_id,''), offer_details, status,
	COALESCE(token,''), token_expiry, responded_at, completed_at, revoked_at,
	COALESCE(revoked_by,''), COALESCE(rejection_reason,''), COALESCE(revocation_reason,''),
	COALESCE(created_by,''), created_at, updated_at`

func scanOnboarding(row interface{ Scan(...interface{}) error }) (*models.Onboarding, error) {
	var ob models.Onboarding
	var offerDetails []byte
	var responded, completed, revoked sql.NullTime

	err := row.Scan(&ob.ID, &ob.OrganizationID, &ob.EmployeeID, &offerDetails, &ob.Status,
		&ob.Token, &ob.TokenExpiry, &responded, &completed, &revoked,
		&ob.RevokedBy, &ob.RejectionReason, &ob.RevocationReason,
		&ob.CreatedBy, &ob.CreatedAt, &ob.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(offerDetails, &ob.OfferDetails)
	ob.RespondedAt = timePtr(responded)
	ob.CompletedAt = timePtr(completed)
	ob.RevokedAt = timePtr(revoked)
	return &ob, nil
}

// CreateOnboarding 创建入职记录
func (db *PostgresDatabase) CreateOnboarding(ob *models.Onboarding) error {
	query := `
		INSERT INTO onboardings (id, organization_id, employee_id, offer_details, status,
			token, token_expiry, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		ob.ID, ob.OrganizationID, ob.EmployeeID, mustJSON(ob.OfferDetails), ob.Status,
		ob.Token, ob.TokenExpiry, ob.CreatedBy,
	).Scan(&ob.CreatedAt, &ob.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create onboarding: %w", err)
	}
	return nil
}

// GetOnboardingByID 根据ID获取入职记录
func (db *PostgresDatabase) GetOnboardingByID(id string) (*models.Onboarding, error) {
	query := `SELECT ` + onboardingColumns + ` FROM onboardings WHERE id = $1`
	return scanOnboarding(db.db.QueryRow(query, id))
}

// GetOnboardingByTokenHash 根据token哈希解析入职记录
func (db *PostgresDatabase) GetOnboardingByTokenHash(hash string) (*models.Onboarding, error) {
	query := `SELECT ` + onboardingColumns + ` FROM onboardings WHERE token = $1`
	return scanOnboarding(db.db.QueryRow(query, hash))
}

// UpdateOnboarding 更新入职记录
func (db *PostgresDatabase) UpdateOnboarding(ob *models.Onboarding) error {
	query := `
		UPDATE onboardings SET employee_id = $2, offer_details = $3, status = $4,
			token = $5, token_expiry = $6, responded_at = $7, completed_at = $8,
			revoked_at = $9, revoked_by = $10, rejection_reason = $11,
			revocation_reason = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		ob.ID, ob.EmployeeID, mustJSON(ob.OfferDetails), ob.Status,
		ob.Token, ob.TokenExpiry, nullTime(ob.RespondedAt), nullTime(ob.CompletedAt),
		nullTime(ob.RevokedAt), ob.RevokedBy, ob.RejectionReason, ob.RevocationReason,
	).Scan(&ob.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("onboarding not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update onboarding: %w", err)
	}
	return nil
}

// ListOnboardings 按组织+状态过滤的分页列表
func (db *PostgresDatabase) ListOnboardings(q ListQuery) ([]models.Onboarding, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.Status != "" {
		where += ` AND status = $2`
		args = append(args, q.Status)
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM onboardings `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count onboardings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM onboardings %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		onboardingColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list onboardings: %w", err)
	}
	defer rows.Close()

	items := []models.Onboarding{}
	for rows.Next() {
		ob, err := scanOnboarding(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *ob)
	}
	return items, total, rows.Err()
}

// CountOnboardingsByStatus 各状态数量统计
func (db *PostgresDatabase) CountOnboardingsByStatus(orgID string) (map[string]int, error) {
	rows, err := db.db.Query(`SELECT status, COUNT(*) FROM onboardings WHERE organization_id = $1 GROUP BY status`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count onboardings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// FindActiveOnboardingByEmail 查找未进入终态的入职记录
func (db *PostgresDatabase) FindActiveOnboardingByEmail(orgID, email string) (*models.Onboarding, error) {
	query := `SELECT ` + onboardingColumns + ` FROM onboardings
		WHERE organization_id = $1 AND LOWER(offer_details->>'email') = LOWER($2)
		AND status IN ('pending', 'accepted')
		ORDER BY created_at DESC LIMIT 1`
	return scanOnboarding(db.db.QueryRow(query, orgID, email))
}

// FindOnboardingByEmailAndStatus 按邮箱+状态查找
func (db *PostgresDatabase) FindOnboardingByEmailAndStatus(orgID, email string, status models.OnboardingStatus) (*models.Onboarding, error) {
	query := `SELECT ` + onboardingColumns + ` FROM onboardings
		WHERE organization_id = $1 AND LOWER(offer_details->>'email') = LOWER($2) AND status = $3
		ORDER BY created_at DESC LIMIT 1`
	return scanOnboarding(db.db.QueryRow(query, orgID, email, status))
}

// DeleteOnboardingsByEmail 按邮箱硬删除（仅开发工具）
func (db *PostgresDatabase) DeleteOnboardingsByEmail(orgID, email string) (int, error) {
	result, err := db.db.Exec(`DELETE FROM onboardings WHERE organization_id = $1 AND LOWER(offer_details->>'email') = LOWER($2)`, orgID, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete onboardings: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// ==== Employment forms ====

const formColumns = `id, organization_id, COALESCE(appointment_letter_id,''), employee_email, status,
	personal_info, cnic_info, contact_info, addresses, accepted_policies,
	COALESCE(token,''), token_expiry, submitted_at, reviewed_at,
	COALESCE(reviewed_by,''), COALESCE(review_notes,''), revision_fields, created_at, updated_at`

func scanEmploymentForm(row interface{ Scan(...interface{}) error }) (*models.EmploymentForm, error) {
	var form models.EmploymentForm
	var personal, cnic, contact, addresses, policies, revisionFields []byte
	var submitted, reviewed sql.NullTime

	err := row.Scan(&form.ID, &form.OrganizationID, &form.AppointmentLetterID, &form.EmployeeEmail,
		&form.Status, &personal, &cnic, &contact, &addresses, &policies,
		&form.Token, &form.TokenExpiry, &submitted, &reviewed,
		&form.ReviewedBy, &form.ReviewNotes, &revisionFields, &form.CreatedAt, &form.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(personal, &form.PersonalInfo)
	unmarshalJSON(cnic, &form.CnicInfo)
	unmarshalJSON(contact, &form.ContactInfo)
	unmarshalJSON(addresses, &form.Addresses)
	unmarshalJSON(policies, &form.AcceptedPolicies)
	unmarshalJSON(revisionFields, &form.RevisionFields)
	form.SubmittedAt = timePtr(submitted)
	form.ReviewedAt = timePtr(reviewed)
	return &form, nil
}

// CreateEmploymentForm 创建雇佣信息表
func (db *PostgresDatabase) CreateEmploymentForm(form *models.EmploymentForm) error {
	query := `
		INSERT INTO employment_forms (id, organization_id, appointment_letter_id, employee_email,
			status, personal_info, cnic_info, contact_info, addresses, accepted_policies,
			token, token_expiry, revision_fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		form.ID, form.OrganizationID, form.AppointmentLetterID, form.EmployeeEmail,
		form.Status, mustJSON(form.PersonalInfo), mustJSON(form.CnicInfo),
		mustJSON(form.ContactInfo), mustJSON(form.Addresses), mustJSON(form.AcceptedPolicies),
		form.Token, form.TokenExpiry, mustJSON(form.RevisionFields),
	).Scan(&form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employment form: %w", err)
	}
	return nil
}

// GetEmploymentFormByID 根据ID获取表单
func (db *PostgresDatabase) GetEmploymentFormByID(id string) (*models.EmploymentForm, error) {
	query := `SELECT ` + formColumns + ` FROM employment_forms WHERE id = $1`
	return scanEmploymentForm(db.db.QueryRow(query, id))
}

// GetEmploymentFormByTokenHash 根据token哈希解析表单
func (db *PostgresDatabase) GetEmploymentFormByTokenHash(hash string) (*models.EmploymentForm, error) {
	query := `SELECT ` + formColumns + ` FROM employment_forms WHERE token = $1`
	return scanEmploymentForm(db.db.QueryRow(query, hash))
}

// UpdateEmploymentForm 更新表单
func (db *PostgresDatabase) UpdateEmploymentForm(form *models.EmploymentForm) error {
	ok, err := db.updateEmploymentFormWhere(form, "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("employment form not found")
	}
	return nil
}

// UpdateEmploymentFormIfStatus 条件更新：数据库中的状态必须在allowed内
// WHERE 子句带状态条件，天然先写者胜
func (db *PostgresDatabase) UpdateEmploymentFormIfStatus(form *models.EmploymentForm, allowed ...models.EmploymentFormStatus) (bool, error) {
	if len(allowed) == 0 {
		return false, fmt.Errorf("no allowed statuses given")
	}
	placeholders := make([]string, len(allowed))
	for i := range allowed {
		placeholders[i] = fmt.Sprintf("'%s'", allowed[i])
	}
	return db.updateEmploymentFormWhere(form, ` AND status IN (`+strings.Join(placeholders, ",")+`)`)
}

func (db *PostgresDatabase) updateEmploymentFormWhere(form *models.EmploymentForm, extraWhere string) (bool, error) {
	query := `
		UPDATE employment_forms SET status = $2, personal_info = $3, cnic_info = $4,
			contact_info = $5, addresses = $6, accepted_policies = $7,
			token = $8, token_expiry = $9, submitted_at = $10, reviewed_at = $11,
			reviewed_by = $12, review_notes = $13, revision_fields = $14, updated_at = NOW()
		WHERE id = $1` + extraWhere + `
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		form.ID, form.Status, mustJSON(form.PersonalInfo), mustJSON(form.CnicInfo),
		mustJSON(form.ContactInfo), mustJSON(form.Addresses), mustJSON(form.AcceptedPolicies),
		form.Token, form.TokenExpiry, nullTime(form.SubmittedAt), nullTime(form.ReviewedAt),
		form.ReviewedBy, form.ReviewNotes, mustJSON(form.RevisionFields),
	).Scan(&form.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update employment form: %w", err)
	}
	return true, nil
}

// ListEmploymentForms 分页列表
func (db *PostgresDatabase) ListEmploymentForms(q ListQuery) ([]models.EmploymentForm, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if q.Email != "" {
		args = append(args, "%"+q.Email+"%")
		where += fmt.Sprintf(` AND employee_email ILIKE $%d`, len(args))
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM employment_forms `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employment forms: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employment_forms %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		formColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employment forms: %w", err)
	}
	defer rows.Close()

	items := []models.EmploymentForm{}
	for rows.Next() {
		form, err := scanEmploymentForm(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *form)
	}
	return items, total, rows.Err()
}

// ==== Contracts ====

const contractColumns = `id, organization_id, COALESCE(employment_form_id,''), COALESCE(employee_id,''),
	contract_details, signatures, status, COALESCE(signing_token,''), token_expiry,
	sent_at, signed_at, terminated_at, COALESCE(termination_reason,''),
	COALESCE(created_by,''), created_at, updated_at`

func scanContract(row interface{ Scan(...interface{}) error }) (*models.EmploymentContract, error) {
	var c models.EmploymentContract
	var details, signatures []byte
	var sent, signed, terminated sql.NullTime

	err := row.Scan(&c.ID, &c.OrganizationID, &c.EmploymentFormID, &c.EmployeeID,
		&details, &signatures, &c.Status, &c.SigningToken, &c.TokenExpiry,
		&sent, &signed, &terminated, &c.TerminationReason,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(details, &c.ContractDetails)
	unmarshalJSON(signatures, &c.Signatures)
	c.SentAt = timePtr(sent)
	c.SignedAt = timePtr(signed)
	c.TerminatedAt = timePtr(terminated)
	return &c, nil
}

// CreateContract 创建合同
func (db *PostgresDatabase) CreateContract(contract *models.EmploymentContract) error {
	query := `
		INSERT INTO contracts (id, organization_id, employment_form_id, employee_id,
			contract_details, signatures, status, signing_token, token_expiry,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		contract.ID, contract.OrganizationID, contract.EmploymentFormID, contract.EmployeeID,
		mustJSON(contract.ContractDetails), mustJSON(contract.Signatures), contract.Status,
		contract.SigningToken, contract.TokenExpiry, contract.CreatedBy,
	).Scan(&contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

// GetContractByID 根据ID获取合同
func (db *PostgresDatabase) GetContractByID(id string) (*models.EmploymentContract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	return scanContract(db.db.QueryRow(query, id))
}

// GetContractByTokenHash 根据签署token哈希解析合同
func (db *PostgresDatabase) GetContractByTokenHash(hash string) (*models.EmploymentContract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE signing_token = $1`
	return scanContract(db.db.QueryRow(query, hash))
}

// UpdateContract 更新合同
func (db *PostgresDatabase) UpdateContract(contract *models.EmploymentContract) error {
	query := `
		UPDATE contracts SET employee_id = $2, contract_details = $3, signatures = $4,
			status = $5, signing_token = $6, token_expiry = $7, sent_at = $8,
			signed_at = $9, terminated_at = $10, termination_reason = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		contract.ID, contract.EmployeeID, mustJSON(contract.ContractDetails),
		mustJSON(contract.Signatures), contract.Status, contract.SigningToken,
		contract.TokenExpiry, nullTime(contract.SentAt), nullTime(contract.SignedAt),
		nullTime(contract.TerminatedAt), contract.TerminationReason,
	).Scan(&contract.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("contract not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	return nil
}

// ListContracts 分页列表
func (db *PostgresDatabase) ListContracts(q ListQuery) ([]models.EmploymentContract, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.Status != "" {
		where += ` AND status = $2`
		args = append(args, q.Status)
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM contracts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM contracts %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		contractColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	items := []models.EmploymentContract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// ==== Appointment letters ====

const letterColumns = `id, organization_id, employee_email, employee_name, letter_content, status,
	COALESCE(token,''), token_expiry, sent_at, viewed_at, responded_at,
	COALESCE(response,''), COALESCE(created_by,''), created_at, updated_at`

func scanAppointmentLetter(row interface{ Scan(...interface{}) error }) (*models.AppointmentLetter, error) {
	var l models.AppointmentLetter
	var content []byte
	var sent, viewed, responded sql.NullTime

	err := row.Scan(&l.ID, &l.OrganizationID, &l.EmployeeEmail, &l.EmployeeName,
		&content, &l.Status, &l.Token, &l.TokenExpiry,
		&sent, &viewed, &responded, &l.Response,
		&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(content, &l.LetterContent)
	l.SentAt = timePtr(sent)
	l.ViewedAt = timePtr(viewed)
	l.RespondedAt = timePtr(responded)
	return &l, nil
}

// CreateAppointmentLetter 创建委任函
func (db *PostgresDatabase) CreateAppointmentLetter(letter *models.AppointmentLetter) error {
	query := `
		INSERT INTO appointment_letters (id, organization_id, employee_email, employee_name,
			letter_content, status, token, token_expiry, sent_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		letter.ID, letter.OrganizationID, letter.EmployeeEmail, letter.EmployeeName,
		mustJSON(letter.LetterContent), letter.Status, letter.Token, letter.TokenExpiry,
		nullTime(letter.SentAt), letter.CreatedBy,
	).Scan(&letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create appointment letter: %w", err)
	}
	return nil
}

// GetAppointmentLetterByID 根据ID获取委任函
func (db *PostgresDatabase) GetAppointmentLetterByID(id string) (*models.AppointmentLetter, error) {
	query := `SELECT ` + letterColumns + ` FROM appointment_letters WHERE id = $1`
	return scanAppointmentLetter(db.db.QueryRow(query, id))
}

// GetAppointmentLetterByTokenHash 根据token哈希解析委任函
func (db *PostgresDatabase) GetAppointmentLetterByTokenHash(hash string) (*models.AppointmentLetter, error) {
	query := `SELECT ` + letterColumns + ` FROM appointment_letters WHERE token = $1`
	return scanAppointmentLetter(db.db.QueryRow(query, hash))
}

// UpdateAppointmentLetter 更新委任函
func (db *PostgresDatabase) UpdateAppointmentLetter(letter *models.AppointmentLetter) error {
	query := `
		UPDATE appointment_letters SET letter_content = $2, status = $3, token = $4,
			token_expiry = $5, sent_at = $6, viewed_at = $7, responded_at = $8,
			response = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		letter.ID, mustJSON(letter.LetterContent), letter.Status, letter.Token,
		letter.TokenExpiry, nullTime(letter.SentAt), nullTime(letter.ViewedAt),
		nullTime(letter.RespondedAt), letter.Response,
	).Scan(&letter.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("appointment letter not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update appointment letter: %w", err)
	}
	return nil
}

// ListAppointmentLetters 分页列表
func (db *PostgresDatabase) ListAppointmentLetters(q ListQuery) ([]models.AppointmentLetter, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.Status != "" {
		where += ` AND status = $2`
		args = append(args, q.Status)
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM appointment_letters `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointment letters: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointment_letters %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		letterColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointment letters: %w", err)
	}
	defer rows.Close()

	items := []models.AppointmentLetter{}
	for rows.Next() {
		l, err := scanAppointmentLetter(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *l)
	}
	return items, total, rows.Err()
}

// ==== Hiring pipeline ====

const candidateColumns = `id, organization_id, name, email, COALESCE(phone,''),
	COALESCE(resume_url,''), COALESCE(portfolio_url,''), COALESCE(linkedin_url,''), COALESCE(github_url,''),
	COALESCE(source,''), COALESCE(referred_by,''), skills, years_of_experience,
	COALESCE(current_company,''), COALESCE(current_position,''), expected_salary,
	COALESCE(notice_period,''), tags, COALESCE(notes,''), is_active, created_at, updated_at`

func scanCandidate(row interface{ Scan(...interface{}) error }) (*models.Candidate, error) {
	var c models.Candidate
	var skills, tags []byte

	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.Phone,
		&c.ResumeURL, &c.PortfolioURL, &c.LinkedinURL, &c.GithubURL,
		&c.Source, &c.ReferredBy, &skills, &c.YearsOfExperience,
		&c.CurrentCompany, &c.CurrentPosition, &c.ExpectedSalary,
		&c.NoticePeriod, &tags, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(skills, &c.Skills)
	unmarshalJSON(tags, &c.Tags)
	return &c, nil
}

// CreateCandidate 创建候选人
func (db *PostgresDatabase) CreateCandidate(c *models.Candidate) error {
	query := `
		INSERT INTO candidates (id, organization_id, name, email, phone,
			resume_url, portfolio_url, linkedin_url, github_url, source, referred_by,
			skills, years_of_experience, current_company, current_position,
			expected_salary, notice_period, tags, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		c.ID, c.OrganizationID, c.Name, c.Email, c.Phone,
		c.ResumeURL, c.PortfolioURL, c.LinkedinURL, c.GithubURL, c.Source, c.ReferredBy,
		mustJSON(c.Skills), c.YearsOfExperience, c.CurrentCompany, c.CurrentPosition,
		c.ExpectedSalary, c.NoticePeriod, mustJSON(c.Tags), c.Notes, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("candidate already exists with this email")
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidateByID 根据ID获取候选人
func (db *PostgresDatabase) GetCandidateByID(id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(db.db.QueryRow(query, id))
}

// GetCandidateByEmail 根据组织+邮箱获取候选人
func (db *PostgresDatabase) GetCandidateByEmail(orgID, email string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE organization_id = $1 AND LOWER(email) = LOWER($2)`
	return scanCandidate(db.db.QueryRow(query, orgID, email))
}

const applicationColumns = `id, organization_id, candidate_id, position_title,
	COALESCE(department,''), COALESCE(employment_type,''), stage, timeline, notes,
	hired_at, created_at, updated_at`

func scanApplication(row interface{ Scan(...interface{}) error }) (*models.Application, error) {
	var a models.Application
	var timeline, notes []byte
	var hired sql.NullTime

	err := row.Scan(&a.ID, &a.OrganizationID, &a.CandidateID, &a.PositionTitle,
		&a.Department, &a.EmploymentType, &a.Stage, &timeline, &notes,
		&hired, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unmarshalJSON(timeline, &a.Timeline)
	unmarshalJSON(notes, &a.Notes)
	a.HiredAt = timePtr(hired)
	return &a, nil
}

// CreateApplication 创建职位申请
func (db *PostgresDatabase) CreateApplication(a *models.Application) error {
	query := `
		INSERT INTO applications (id, organization_id, candidate_id, position_title,
			department, employment_type, stage, timeline, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		a.ID, a.OrganizationID, a.CandidateID, a.PositionTitle,
		a.Department, a.EmploymentType, a.Stage, mustJSON(a.Timeline), mustJSON(a.Notes),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetApplicationByID 根据ID获取申请
func (db *PostgresDatabase) GetApplicationByID(id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(db.db.QueryRow(query, id))
}

// GetApplicationByCandidate 根据候选人获取申请
func (db *PostgresDatabase) GetApplicationByCandidate(orgID, candidateID string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE organization_id = $1 AND candidate_id = $2
		ORDER BY created_at DESC LIMIT 1`
	return scanApplication(db.db.QueryRow(query, orgID, candidateID))
}

// UpdateApplication 更新申请
func (db *PostgresDatabase) UpdateApplication(a *models.Application) error {
	query := `
		UPDATE applications SET position_title = $2, department = $3, employment_type = $4,
			stage = $5, timeline = $6, notes = $7, hired_at = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		a.ID, a.PositionTitle, a.Department, a.EmploymentType,
		a.Stage, mustJSON(a.Timeline), mustJSON(a.Notes), nullTime(a.HiredAt),
	).Scan(&a.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("application not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	return nil
}

// DeleteApplication 删除申请
func (db *PostgresDatabase) DeleteApplication(id string) error {
	result, err := db.db.Exec(`DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("application not found")
	}
	return nil
}

// ListApplications 分页列表
func (db *PostgresDatabase) ListApplications(q ListQuery) ([]models.Application, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.Status != "" {
		where += ` AND stage = $2`
		args = append(args, q.Status)
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM applications `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM applications %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		applicationColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	items := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

// CountApplicationsByStage 各阶段数量统计
func (db *PostgresDatabase) CountApplicationsByStage(orgID string) (map[string]int, error) {
	rows, err := db.db.Query(`SELECT stage, COUNT(*) FROM applications WHERE organization_id = $1 GROUP BY stage`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

// ==== 考勤 ====

const attendanceColumns = `id, organization_id, user_id, date, check_in_at, check_out_at,
	COALESCE(notes,''), created_at, updated_at`

func scanAttendanceRecord(row interface{ Scan(...interface{}) error }) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	var checkOut sql.NullTime

	err := row.Scan(&rec.ID, &rec.OrganizationID, &rec.UserID, &rec.Date,
		&rec.CheckInAt, &checkOut, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.CheckOutAt = timePtr(checkOut)
	return &rec, nil
}

// CreateAttendanceRecord 创建考勤记录
func (db *PostgresDatabase) CreateAttendanceRecord(rec *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (id, organization_id, user_id, date, check_in_at,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.db.QueryRow(query,
		rec.ID, rec.OrganizationID, rec.UserID, rec.Date, rec.CheckInAt, rec.Notes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

// GetOpenAttendanceRecord 获取当天未签退的记录
func (db *PostgresDatabase) GetOpenAttendanceRecord(orgID, userID, date string) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE organization_id = $1 AND user_id = $2 AND date = $3 AND check_out_at IS NULL
		ORDER BY created_at DESC LIMIT 1`
	return scanAttendanceRecord(db.db.QueryRow(query, orgID, userID, date))
}

// UpdateAttendanceRecord 更新考勤记录
func (db *PostgresDatabase) UpdateAttendanceRecord(rec *models.AttendanceRecord) error {
	query := `
		UPDATE attendance_records SET check_in_at = $2, check_out_at = $3, notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.db.QueryRow(query,
		rec.ID, rec.CheckInAt, nullTime(rec.CheckOutAt), rec.Notes,
	).Scan(&rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("attendance record not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	return nil
}

// ListAttendanceRecords 分页列表
func (db *PostgresDatabase) ListAttendanceRecords(q ListQuery) ([]models.AttendanceRecord, int, error) {
	q.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{q.OrganizationID}
	if q.UserID != "" {
		where += ` AND user_id = $2`
		args = append(args, q.UserID)
	}

	var total int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM attendance_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance_records %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		attendanceColumns, where, q.Limit, q.Offset())
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	items := []models.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *rec)
	}
	return items, total, rows.Err()
}

// HealthCheck 健康检查
func (db *PostgresDatabase) HealthCheck() error {
	return db.db.Ping()
}

// Close 关闭连接
func (db *PostgresDatabase) Close() error {
	return db.db.Close()
}

// Stats 连接池统计，暴露给健康检查端点
func (db *PostgresDatabase) Stats() sql.DBStats {
	return db.db.Stats()
}
