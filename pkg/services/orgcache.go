package services

import (
	"sync"
	"time"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

// brandingCacheTTL 品牌缓存有效期
const brandingCacheTTL = 5 * time.Minute

type brandingEntry struct {
	org       *models.Organization
	expiresAt time.Time
}

// OrgService 组织读取与品牌缓存
// 公开 token 端点每次都要带品牌信息，缓存避免反复查库
type OrgService struct {
	db  database.DatabaseInterface
	mu  sync.Mutex
	lru map[string]brandingEntry

	// now 可在测试中替换
	now func() time.Time
}

// NewOrgService 创建组织服务
func NewOrgService(db database.DatabaseInterface) *OrgService {
	return &OrgService{
		db:  db,
		lru: make(map[string]brandingEntry),
		now: time.Now,
	}
}

// GetOrganization 直接读库（管理端点使用，不走缓存）
func (s *OrgService) GetOrganization(orgID string) (*models.Organization, error) {
	org, err := s.db.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, wrapErr(ErrNotFound, "organization %s", orgID)
	}
	return org, nil
}

// GetCachedOrganization 带5分钟TTL缓存的组织读取
func (s *OrgService) GetCachedOrganization(orgID string) (*models.Organization, error) {
	s.mu.Lock()
	entry, ok := s.lru[orgID]
	if ok && s.now().Before(entry.expiresAt) {
		s.mu.Unlock()
		return entry.org, nil
	}
	s.mu.Unlock()

	org, err := s.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lru[orgID] = brandingEntry{org: org, expiresAt: s.now().Add(brandingCacheTTL)}
	s.mu.Unlock()
	return org, nil
}

// GetBranding 公开端点附带的最小品牌视图
func (s *OrgService) GetBranding(orgID string) (models.OrgBranding, error) {
	org, err := s.GetCachedOrganization(orgID)
	if err != nil {
		return models.OrgBranding{}, err
	}
	return org.Branding(), nil
}

// Evict 组织数据变更后立即失效缓存
func (s *OrgService) Evict(orgID string) {
	s.mu.Lock()
	delete(s.lru, orgID)
	s.mu.Unlock()
}

// UpdateOrganization 更新组织并失效缓存
func (s *OrgService) UpdateOrganization(org *models.Organization) error {
	if err := s.db.UpdateOrganization(org); err != nil {
		return err
	}
	s.Evict(org.ID)
	return nil
}
