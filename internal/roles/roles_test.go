package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManageStrictSeniority(t *testing.T) {
	expected := map[Role][]Role{
		RoleTopAdmin: {RoleAdmin, RoleClerk, RoleResident},
		RoleAdmin:    {RoleClerk, RoleResident},
		RoleClerk:    {RoleResident},
		RoleResident: {},
	}

	for _, acting := range All() {
		allowed := map[Role]bool{}
		for _, r := range expected[acting] {
			allowed[r] = true
		}
		for _, target := range All() {
			got := CanManage(acting, target)
			assert.Equal(t, allowed[target], got, "CanManage(%s, %s)", acting, target)
		}
	}
}

func TestCanManageSelfAlwaysFalse(t *testing.T) {
	for _, r := range All() {
		assert.False(t, CanManage(r, r), "role %s must not manage itself", r)
	}
}

func TestCanManageUnknownRole(t *testing.T) {
	assert.False(t, CanManage(Role("MAYOR"), RoleResident))
	assert.False(t, CanManage(RoleTopAdmin, Role("MAYOR")))
}

func TestCanCreateRoleMatchesCanManage(t *testing.T) {
	for _, acting := range All() {
		for _, target := range All() {
			assert.Equal(t, CanManage(acting, target), CanCreateRole(acting, target))
		}
	}
}

func TestIsStaff(t *testing.T) {
	assert.True(t, IsStaff(RoleTopAdmin))
	assert.True(t, IsStaff(RoleAdmin))
	assert.True(t, IsStaff(RoleClerk))
	assert.False(t, IsStaff(RoleResident))
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(RoleTopAdmin, RoleAdmin))
	assert.True(t, AtLeast(RoleAdmin, RoleAdmin))
	assert.False(t, AtLeast(RoleClerk, RoleAdmin))
	assert.False(t, AtLeast(Role("MAYOR"), RoleResident))
}

func TestParse(t *testing.T) {
	r, err := Parse("clerk")
	require.NoError(t, err)
	assert.Equal(t, RoleClerk, r)

	r, err = Parse(" TOP_ADMIN ")
	require.NoError(t, err)
	assert.Equal(t, RoleTopAdmin, r)

	_, err = Parse("superuser")
	require.Error(t, err)
}
