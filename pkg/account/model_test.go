package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleInspector, RoleManager, RoleAdministrator, RoleSysadmin} {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("superuser")
	assert.Error(t, err)
	assert.False(t, Role("Inspector").Valid())
}

func TestCompanyScoped(t *testing.T) {
	assert.True(t, RoleAdministrator.CompanyScoped())
	assert.True(t, RoleManager.CompanyScoped())
	assert.False(t, RoleInspector.CompanyScoped())
	assert.False(t, RoleSysadmin.CompanyScoped())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com\n"))
}
