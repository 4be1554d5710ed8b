package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandingCacheServesStaleWithinTTL(t *testing.T) {
	env := newTestEnv(t)

	base := time.Now()
	env.orgs.now = func() time.Time { return base }

	branding, err := env.orgs.GetBranding(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", branding.CompanyName)

	// 绕过服务直接改库，缓存尚未失效时仍返回旧值
	stored, err := env.db.GetOrganization(env.org.ID)
	require.NoError(t, err)
	stored.CompanyName = "Difference Engines Ltd"
	require.NoError(t, env.db.UpdateOrganization(stored))

	env.orgs.now = func() time.Time { return base.Add(brandingCacheTTL - time.Second) }
	branding, err = env.orgs.GetBranding(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", branding.CompanyName)

	// TTL 过后重新读库
	env.orgs.now = func() time.Time { return base.Add(brandingCacheTTL + time.Second) }
	branding, err = env.orgs.GetBranding(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Difference Engines Ltd", branding.CompanyName)
}

func TestBrandingCacheEvictOnUpdate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orgs.GetBranding(env.org.ID)
	require.NoError(t, err)

	// 走服务更新会主动失效缓存，无需等TTL
	org, err := env.orgs.GetOrganization(env.org.ID)
	require.NoError(t, err)
	org.CompanyName = "Jacquard Looms Inc"
	require.NoError(t, env.orgs.UpdateOrganization(org))

	branding, err := env.orgs.GetBranding(env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jacquard Looms Inc", branding.CompanyName)
}

func TestBrandingUnknownOrganization(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orgs.GetBranding("no-such-org")
	assert.ErrorIs(t, err, ErrNotFound)
}
