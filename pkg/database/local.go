package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// LocalDatabase 本地文件数据库实现（开发与测试用）
// 每个集合一个 JSON 文件，读-改-写全程持锁，保证先写者胜
type LocalDatabase struct {
	dataDir string
	mu      sync.Mutex
}

// NewLocalDatabase 创建本地数据库实例
func NewLocalDatabase(dataDir string) DatabaseInterface {
	if dataDir == "" {
		dataDir = "./data"
	}

	// 尝试创建数据目录，失败则退回临时目录
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Printf("Warning: Failed to create data directory: %v\n", err)
		dataDir = filepath.Join(os.TempDir(), "oms-data")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			fmt.Printf("Warning: Failed to create temp data directory: %v\n", err)
			dataDir = "."
		}
	}

	return &LocalDatabase{dataDir: dataDir}
}

// 私有辅助方法

func (db *LocalDatabase) filePath(collection string) string {
	return filepath.Join(db.dataDir, collection+".json")
}

func loadAll[T any](db *LocalDatabase, collection string) ([]T, error) {
	data, err := os.ReadFile(db.filePath(collection))
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveAll[T any](db *LocalDatabase, collection string, items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.filePath(collection), data, 0644)
}

func paginate[T any](items []T, q ListQuery) ([]T, int) {
	total := len(items)
	start := q.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

// ==== 存储结构 ====
// 模型把 token 哈希和密码哈希标记为 json:"-"（响应边界脱敏），
// 本地存储经 encoding/json 落盘，必须用独立的存储结构把这些字段带上，
// 否则首次保存后哈希就丢了，签发的 token 再也解析不到

type storedUser struct {
	models.User
	Password string `json:"password_hash"`
}

type storedOnboarding struct {
	models.Onboarding
	Token string `json:"token_hash"`
}

type storedEmploymentForm struct {
	models.EmploymentForm
	Token string `json:"token_hash"`
}

type storedContract struct {
	models.EmploymentContract
	SigningToken string `json:"signing_token_hash"`
}

type storedAppointmentLetter struct {
	models.AppointmentLetter
	Token string `json:"token_hash"`
}

func loadUsers(db *LocalDatabase) ([]models.User, error) {
	rows, err := loadAll[storedUser](db, "users")
	if err != nil {
		return nil, err
	}
	items := make([]models.User, len(rows))
	for i, r := range rows {
		items[i] = r.User
		items[i].Password = r.Password
	}
	return items, nil
}

func saveUsers(db *LocalDatabase, items []models.User) error {
	rows := make([]storedUser, len(items))
	for i, it := range items {
		rows[i] = storedUser{User: it, Password: it.Password}
	}
	return saveAll(db, "users", rows)
}

func loadOnboardings(db *LocalDatabase) ([]models.Onboarding, error) {
	rows, err := loadAll[storedOnboarding](db, "onboardings")
	if err != nil {
		return nil, err
	}
	items := make([]models.Onboarding, len(rows))
	for i, r := range rows {
		items[i] = r.Onboarding
		items[i].Token = r.Token
	}
	return items, nil
}

func saveOnboardings(db *LocalDatabase, items []models.Onboarding) error {
	rows := make([]storedOnboarding, len(items))
	for i, it := range items {
		rows[i] = storedOnboarding{Onboarding: it, Token: it.Token}
	}
	return saveAll(db, "onboardings", rows)
}

func loadEmploymentForms(db *LocalDatabase) ([]models.EmploymentForm, error) {
	rows, err := loadAll[storedEmploymentForm](db, "employment_forms")
	if err != nil {
		return nil, err
	}
	items := make([]models.EmploymentForm, len(rows))
	for i, r := range rows {
		items[i] = r.EmploymentForm
		items[i].Token = r.Token
	}
	return items, nil
}

func saveEmploymentForms(db *LocalDatabase, items []models.EmploymentForm) error {
	rows := make([]storedEmploymentForm, len(items))
	for i, it := range items {
		rows[i] = storedEmploymentForm{EmploymentForm: it, Token: it.Token}
	}
	return saveAll(db, "employment_forms", rows)
}

func loadContracts(db *LocalDatabase) ([]models.EmploymentContract, error) {
	rows, err := loadAll[storedContract](db, "contracts")
	if err != nil {
		return nil, err
	}
	items := make([]models.EmploymentContract, len(rows))
	for i, r := range rows {
		items[i] = r.EmploymentContract
		items[i].SigningToken = r.SigningToken
	}
	return items, nil
}

func saveContracts(db *LocalDatabase, items []models.EmploymentContract) error {
	rows := make([]storedContract, len(items))
	for i, it := range items {
		rows[i] = storedContract{EmploymentContract: it, SigningToken: it.SigningToken}
	}
	return saveAll(db, "contracts", rows)
}

func loadAppointmentLetters(db *LocalDatabase) ([]models.AppointmentLetter, error) {
	rows, err := loadAll[storedAppointmentLetter](db, "appointment_letters")
	if err != nil {
		return nil, err
	}
	items := make([]models.AppointmentLetter, len(rows))
	for i, r := range rows {
		items[i] = r.AppointmentLetter
		items[i].Token = r.Token
	}
	return items, nil
}

func saveAppointmentLetters(db *LocalDatabase, items []models.AppointmentLetter) error {
	rows := make([]storedAppointmentLetter, len(items))
	for i, it := range items {
		rows[i] = storedAppointmentLetter{AppointmentLetter: it, Token: it.Token}
	}
	return saveAll(db, "appointment_letters", rows)
}

// ==== Users ====

// CreateUser 创建用户
func (db *LocalDatabase) CreateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.OrganizationID == user.OrganizationID && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user already exists with this email")
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	users = append(users, *user)
	return saveUsers(db, users)
}

// GetUserByEmail 根据组织和邮箱获取用户
func (db *LocalDatabase) GetUserByEmail(orgID, email string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].OrganizationID == orgID && strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindUserByEmail 跨组织按邮箱查找用户
func (db *LocalDatabase) FindUserByEmail(email string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetUserByID 根据ID获取用户
func (db *LocalDatabase) GetUserByID(id string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// UpdateUser 更新用户
func (db *LocalDatabase) UpdateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID == user.ID {
			user.UpdatedAt = time.Now()
			users[i] = *user
			return saveUsers(db, users)
		}
	}
	return fmt.Errorf("user not found")
}

// DeleteUser 删除用户
func (db *LocalDatabase) DeleteUser(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	users, err := loadUsers(db)
	if err != nil {
		return err
	}

	kept := users[:0]
	found := false
	for _, u := range users {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return fmt.Errorf("user not found")
	}
	return saveUsers(db, kept)
}

// ==== Organizations ====

// CreateOrganization 创建组织
func (db *LocalDatabase) CreateOrganization(org *models.Organization) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	orgs, err := loadAll[models.Organization](db, "organizations")
	if err != nil {
		return err
	}

	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	orgs = append(orgs, *org)
	return saveAll(db, "organizations", orgs)
}

// GetOrganization 根据ID获取组织
func (db *LocalDatabase) GetOrganization(orgID string) (*models.Organization, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	orgs, err := loadAll[models.Organization](db, "organizations")
	if err != nil {
		return nil, err
	}

	for i := range orgs {
		if orgs[i].ID == orgID {
			return &orgs[i], nil
		}
	}
	return nil, nil
}

// UpdateOrganization 更新组织
func (db *LocalDatabase) UpdateOrganization(org *models.Organization) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	orgs, err := loadAll[models.Organization](db, "organizations")
	if err != nil {
		return err
	}

	for i := range orgs {
		if orgs[i].ID == org.ID {
			org.UpdatedAt = time.Now()
			orgs[i] = *org
			return saveAll(db, "organizations", orgs)
		}
	}
	return fmt.Errorf("organization not found")
}

// ==== Onboardings ====

// CreateOnboarding 创建入职记录
func (db *LocalDatabase) CreateOnboarding(ob *models.Onboarding) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return err
	}

	if ob.ID == "" {
		ob.ID = uuid.New().String()
	}
	ob.CreatedAt = time.Now()
	ob.UpdatedAt = time.Now()

	items = append(items, *ob)
	return saveOnboardings(db, items)
}

// GetOnboardingByID 根据ID获取入职记录
func (db *LocalDatabase) GetOnboardingByID(id string) (*models.Onboarding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetOnboardingByTokenHash 根据token哈希解析入职记录
func (db *LocalDatabase) GetOnboardingByTokenHash(hash string) (*models.Onboarding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Token == hash {
			return &items[i], nil
		}
	}
	return nil, nil
}

// UpdateOnboarding 更新入职记录
func (db *LocalDatabase) UpdateOnboarding(ob *models.Onboarding) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == ob.ID {
			ob.UpdatedAt = time.Now()
			items[i] = *ob
			return saveOnboardings(db, items)
		}
	}
	return fmt.Errorf("onboarding not found")
}

// ListOnboardings 按组织+状态过滤的分页列表（新的在前）
func (db *LocalDatabase) ListOnboardings(q ListQuery) ([]models.Onboarding, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadOnboardings(db)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.Onboarding, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- { // 倒序：最近创建的在前
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// CountOnboardingsByStatus 各状态数量统计
func (db *LocalDatabase) CountOnboardingsByStatus(orgID string) (map[string]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, it := range items {
		if orgID != "" && it.OrganizationID != orgID {
			continue
		}
		counts[string(it.Status)]++
	}
	return counts, nil
}

// FindActiveOnboardingByEmail 查找未进入终态的入职记录
func (db *LocalDatabase) FindActiveOnboardingByEmail(orgID, email string) (*models.Onboarding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		it := &items[i]
		if it.OrganizationID == orgID && strings.EqualFold(it.OfferDetails.Email, email) && !it.Status.IsTerminal() {
			return it, nil
		}
	}
	return nil, nil
}

// FindOnboardingByEmailAndStatus 按邮箱+状态查找
func (db *LocalDatabase) FindOnboardingByEmailAndStatus(orgID, email string, status models.OnboardingStatus) (*models.Onboarding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		it := &items[i]
		if it.OrganizationID == orgID && strings.EqualFold(it.OfferDetails.Email, email) && it.Status == status {
			return it, nil
		}
	}
	return nil, nil
}

// DeleteOnboardingsByEmail 按邮箱硬删除（仅开发工具）
func (db *LocalDatabase) DeleteOnboardingsByEmail(orgID, email string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadOnboardings(db)
	if err != nil {
		return 0, err
	}

	kept := items[:0]
	removed := 0
	for _, it := range items {
		if it.OrganizationID == orgID && strings.EqualFold(it.OfferDetails.Email, email) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, saveOnboardings(db, kept)
}

// ==== Employment forms ====

// CreateEmploymentForm 创建雇佣信息表
func (db *LocalDatabase) CreateEmploymentForm(form *models.EmploymentForm) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadEmploymentForms(db)
	if err != nil {
		return err
	}

	if form.ID == "" {
		form.ID = uuid.New().String()
	}
	form.CreatedAt = time.Now()
	form.UpdatedAt = time.Now()

	items = append(items, *form)
	return saveEmploymentForms(db, items)
}

// GetEmploymentFormByID 根据ID获取表单
func (db *LocalDatabase) GetEmploymentFormByID(id string) (*models.EmploymentForm, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadEmploymentForms(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetEmploymentFormByTokenHash 根据token哈希解析表单
func (db *LocalDatabase) GetEmploymentFormByTokenHash(hash string) (*models.EmploymentForm, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadEmploymentForms(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Token == hash {
			return &items[i], nil
		}
	}
	return nil, nil
}

// UpdateEmploymentForm 更新表单
func (db *LocalDatabase) UpdateEmploymentForm(form *models.EmploymentForm) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.updateEmploymentFormLocked(form)
}

func (db *LocalDatabase) updateEmploymentFormLocked(form *models.EmploymentForm) error {
	items, err := loadEmploymentForms(db)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == form.ID {
			form.UpdatedAt = time.Now()
			items[i] = *form
			return saveEmploymentForms(db, items)
		}
	}
	return fmt.Errorf("employment form not found")
}

// UpdateEmploymentFormIfStatus 条件更新：存储中的状态必须在allowed内
// 先写者胜，后来者拿到 false
func (db *LocalDatabase) UpdateEmploymentFormIfStatus(form *models.EmploymentForm, allowed ...models.EmploymentFormStatus) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadEmploymentForms(db)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].ID != form.ID {
			continue
		}
		ok := false
		for _, s := range allowed {
			if items[i].Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false, nil
		}
		form.UpdatedAt = time.Now()
		items[i] = *form
		return true, saveEmploymentForms(db, items)
	}
	return false, fmt.Errorf("employment form not found")
}

// ListEmploymentForms 分页列表
func (db *LocalDatabase) ListEmploymentForms(q ListQuery) ([]models.EmploymentForm, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadEmploymentForms(db)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.EmploymentForm, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		if q.Email != "" && !strings.Contains(strings.ToLower(it.EmployeeEmail), strings.ToLower(q.Email)) {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// ==== Contracts ====

// CreateContract 创建合同
func (db *LocalDatabase) CreateContract(contract *models.EmploymentContract) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadContracts(db)
	if err != nil {
		return err
	}

	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = time.Now()

	items = append(items, *contract)
	return saveContracts(db, items)
}

// GetContractByID 根据ID获取合同
func (db *LocalDatabase) GetContractByID(id string) (*models.EmploymentContract, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadContracts(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetContractByTokenHash 根据签署token哈希解析合同
func (db *LocalDatabase) GetContractByTokenHash(hash string) (*models.EmploymentContract, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadContracts(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].SigningToken == hash {
			return &items[i], nil
		}
	}
	return nil, nil
}

// UpdateContract 更新合同
func (db *LocalDatabase) UpdateContract(contract *models.EmploymentContract) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadContracts(db)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == contract.ID {
			contract.UpdatedAt = time.Now()
			items[i] = *contract
			return saveContracts(db, items)
		}
	}
	return fmt.Errorf("contract not found")
}

// ListContracts 分页列表
func (db *LocalDatabase) ListContracts(q ListQuery) ([]models.EmploymentContract, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadContracts(db)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.EmploymentContract, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// ==== Appointment letters ====

// CreateAppointmentLetter 创建委任函
func (db *LocalDatabase) CreateAppointmentLetter(letter *models.AppointmentLetter) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAppointmentLetters(db)
	if err != nil {
		return err
	}

	if letter.ID == "" {
		letter.ID = uuid.New().String()
	}
	letter.CreatedAt = time.Now()
	letter.UpdatedAt = time.Now()

	items = append(items, *letter)
	return saveAppointmentLetters(db, items)
}

// GetAppointmentLetterByID 根据ID获取委任函
func (db *LocalDatabase) GetAppointmentLetterByID(id string) (*models.AppointmentLetter, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAppointmentLetters(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetAppointmentLetterByTokenHash 根据token哈希解析委任函
func (db *LocalDatabase) GetAppointmentLetterByTokenHash(hash string) (*models.AppointmentLetter, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAppointmentLetters(db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Token == hash {
			return &items[i], nil
		}
	}
	return nil, nil
}

// UpdateAppointmentLetter 更新委任函
func (db *LocalDatabase) UpdateAppointmentLetter(letter *models.AppointmentLetter) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAppointmentLetters(db)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == letter.ID {
			letter.UpdatedAt = time.Now()
			items[i] = *letter
			return saveAppointmentLetters(db, items)
		}
	}
	return fmt.Errorf("appointment letter not found")
}

// ListAppointmentLetters 分页列表
func (db *LocalDatabase) ListAppointmentLetters(q ListQuery) ([]models.AppointmentLetter, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadAppointmentLetters(db)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.AppointmentLetter, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// ==== Hiring pipeline ====

// CreateCandidate 创建候选人（每组织每邮箱唯一）
func (db *LocalDatabase) CreateCandidate(c *models.Candidate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Candidate](db, "candidates")
	if err != nil {
		return err
	}

	for _, it := range items {
		if it.OrganizationID == c.OrganizationID && strings.EqualFold(it.Email, c.Email) {
			return fmt.Errorf("candidate already exists with this email")
		}
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()

	items = append(items, *c)
	return saveAll(db, "candidates", items)
}

// GetCandidateByID 根据ID获取候选人
func (db *LocalDatabase) GetCandidateByID(id string) (*models.Candidate, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Candidate](db, "candidates")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetCandidateByEmail 根据组织+邮箱获取候选人
func (db *LocalDatabase) GetCandidateByEmail(orgID, email string) (*models.Candidate, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Candidate](db, "candidates")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].OrganizationID == orgID && strings.EqualFold(items[i].Email, email) {
			return &items[i], nil
		}
	}
	return nil, nil
}

// CreateApplication 创建职位申请
func (db *LocalDatabase) CreateApplication(a *models.Application) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	items = append(items, *a)
	return saveAll(db, "applications", items)
}

// GetApplicationByID 根据ID获取申请
func (db *LocalDatabase) GetApplicationByID(id string) (*models.Application, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// GetApplicationByCandidate 根据候选人获取申请
func (db *LocalDatabase) GetApplicationByCandidate(orgID, candidateID string) (*models.Application, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].OrganizationID == orgID && items[i].CandidateID == candidateID {
			return &items[i], nil
		}
	}
	return nil, nil
}

// UpdateApplication 更新申请
func (db *LocalDatabase) UpdateApplication(a *models.Application) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == a.ID {
			a.UpdatedAt = time.Now()
			items[i] = *a
			return saveAll(db, "applications", items)
		}
	}
	return fmt.Errorf("application not found")
}

// DeleteApplication 删除申请
func (db *LocalDatabase) DeleteApplication(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return fmt.Errorf("application not found")
	}
	return saveAll(db, "applications", kept)
}

// ListApplications 分页列表
func (db *LocalDatabase) ListApplications(q ListQuery) ([]models.Application, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.Application, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.Status != "" && string(it.Stage) != q.Status {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// CountApplicationsByStage 各阶段数量统计
func (db *LocalDatabase) CountApplicationsByStage(orgID string) (map[string]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.Application](db, "applications")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, it := range items {
		if orgID != "" && it.OrganizationID != orgID {
			continue
		}
		counts[string(it.Stage)]++
	}
	return counts, nil
}

// ==== 考勤 ====

// CreateAttendanceRecord 创建考勤记录
func (db *LocalDatabase) CreateAttendanceRecord(rec *models.AttendanceRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.AttendanceRecord](db, "attendance")
	if err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()

	items = append(items, *rec)
	return saveAll(db, "attendance", items)
}

// GetOpenAttendanceRecord 获取当天未签退的记录
func (db *LocalDatabase) GetOpenAttendanceRecord(orgID, userID, date string) (*models.AttendanceRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.AttendanceRecord](db, "attendance")
	if err != nil {
		return nil, err
	}
	for i := range items {
		it := &items[i]
		if it.OrganizationID == orgID && it.UserID == userID && it.Date == date && it.CheckOutAt == nil {
			return it, nil
		}
	}
	return nil, nil
}

// UpdateAttendanceRecord 更新考勤记录
func (db *LocalDatabase) UpdateAttendanceRecord(rec *models.AttendanceRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := loadAll[models.AttendanceRecord](db, "attendance")
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == rec.ID {
			rec.UpdatedAt = time.Now()
			items[i] = *rec
			return saveAll(db, "attendance", items)
		}
	}
	return fmt.Errorf("attendance record not found")
}

// ListAttendanceRecords 分页列表
func (db *LocalDatabase) ListAttendanceRecords(q ListQuery) ([]models.AttendanceRecord, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q.Normalize()
	items, err := loadAll[models.AttendanceRecord](db, "attendance")
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]models.AttendanceRecord, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if q.OrganizationID != "" && it.OrganizationID != q.OrganizationID {
			continue
		}
		if q.UserID != "" && it.UserID != q.UserID {
			continue
		}
		filtered = append(filtered, it)
	}

	page, total := paginate(filtered, q)
	return page, total, nil
}

// HealthCheck 健康检查
func (db *LocalDatabase) HealthCheck() error {
	if _, err := os.Stat(db.dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", db.dataDir)
	}
	return nil
}

// Close 关闭连接（本地数据库无需关闭）
func (db *LocalDatabase) Close() error {
	return nil
}
