package authorize

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestEnforcer builds an enforcer over an empty policy file.
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(policyPath, []byte(""), 0o644))

	m, err := LoadModel("")
	require.NoError(t, err)

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	require.NoError(t, err)

	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

func seededAuth(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	require.NoError(t, err)
	require.NoError(t, SeedDefaultPolicies(context.Background(), auth))
	return auth
}

func TestNewAuthorization(t *testing.T) {
	_, err := NewAuthorization(nil)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	auth, err := NewAuthorization(createTestEnforcer(t))
	require.NoError(t, err)
	assert.NotNil(t, auth)
}

func TestLoadModelFromFileMatchesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.conf")
	require.NoError(t, os.WriteFile(path, []byte(DefaultModel), 0o644))

	fromFile, err := LoadModel(path)
	require.NoError(t, err)
	fromString, err := LoadModel("")
	require.NoError(t, err)

	assert.Equal(t, fromString["m"]["m"].Value, fromFile["m"]["m"].Value)
}

func TestHospitalRoles(t *testing.T) {
	ctx := context.Background()
	auth := seededAuth(t)

	require.NoError(t, AssignHospitalAdmin(ctx, auth, 1, 10))
	require.NoError(t, AssignHospitalMember(ctx, auth, 2, 10))

	tests := []struct {
		name     string
		vet      int64
		hospital int64
		resource Resource
		action   Action
		want     bool
	}{
		{"admin updates own hospital", 1, 10, ResourceHospital, ActionUpdate, true},
		{"admin manages members", 1, 10, ResourceHospitalMembers, ActionManage, true},
		{"member reads hospital", 2, 10, ResourceHospital, ActionRead, true},
		{"member cannot update hospital", 2, 10, ResourceHospital, ActionUpdate, false},
		{"admin has no rights in other hospital", 1, 11, ResourceHospital, ActionRead, false},
		{"stranger denied", 3, 10, ResourceHospital, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, VeterinarianSubject(tt.vet), HospitalDomain(tt.hospital), tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnforceRejectsBadTuples(t *testing.T) {
	ctx := context.Background()
	auth := seededAuth(t)
	sub := VeterinarianSubject(1)

	_, err := auth.Enforce(ctx, "", HospitalDomain(1), ResourceHospital, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, sub, Domain("clinic:1"), ResourceHospital, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, sub, WildcardDomain, ResourceHospital, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, sub, HospitalDomain(1), Resource("horse"), ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, sub, HospitalDomain(1), ResourceHospital, Action("delete"))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestMustEnforce(t *testing.T) {
	ctx := context.Background()
	auth := seededAuth(t)
	require.NoError(t, AssignHospitalMember(ctx, auth, 5, 3))

	assert.NoError(t, auth.MustEnforce(ctx, VeterinarianSubject(5), HospitalDomain(3), ResourceHospital, ActionRead))
	assert.ErrorIs(t, auth.MustEnforce(ctx, VeterinarianSubject(5), HospitalDomain(3), ResourceHospital, ActionUpdate), ErrForbidden)
}

func TestRevokeHospitalRoles(t *testing.T) {
	ctx := context.Background()
	auth := seededAuth(t)

	require.NoError(t, AssignHospitalAdmin(ctx, auth, 7, 2))
	require.NoError(t, AssignHospitalMember(ctx, auth, 7, 2))

	roles, err := auth.GetRolesForUserInDomain(ctx, VeterinarianSubject(7), HospitalDomain(2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Role{RoleHospitalAdmin, RoleHospitalMember}, roles)

	require.NoError(t, RevokeHospitalRoles(ctx, auth, 7, 2))

	roles, err = auth.GetRolesForUserInDomain(ctx, VeterinarianSubject(7), HospitalDomain(2))
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestAddRoleRejectsUnknownRole(t *testing.T) {
	auth := seededAuth(t)
	_, err := auth.AddRoleForUserInDomain(context.Background(), VeterinarianSubject(1), Role("role:sys:admin"), HospitalDomain(1))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestAddPermissionRejectsBadEffect(t *testing.T) {
	auth := seededAuth(t)
	_, err := auth.AddPermission(context.Background(), RoleHospitalMember, WildcardDomain, ResourceHospital, ActionRead, PolicyEffect("maybe"))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestIsValidDomain(t *testing.T) {
	assert.True(t, IsValidDomain(WildcardDomain))
	assert.True(t, IsValidDomain(HospitalDomain(42)))
	assert.False(t, IsValidDomain(Domain("hospital:")))
	assert.False(t, IsValidDomain(Domain("hospital:0")))
	assert.False(t, IsValidDomain(Domain("hospital:abc")))
	assert.False(t, IsValidDomain(Domain("sys")))
}

func TestAuditedAuthorizationLogsDecisions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	auth := NewAuditedAuthorization(seededAuth(t), logger)
	ctx := context.Background()

	require.NoError(t, AssignHospitalAdmin(ctx, auth, 1, 1))
	ok, err := auth.Enforce(ctx, VeterinarianSubject(1), HospitalDomain(1), ResourceHospital, ActionUpdate)
	require.NoError(t, err)
	assert.True(t, ok)

	out := buf.String()
	assert.Contains(t, out, `"msg":"authz_role_change"`)
	assert.Contains(t, out, `"msg":"authz_decision"`)
	assert.Contains(t, out, `"subject":"vet:1"`)
}

func TestMemoryEnforcer(t *testing.T) {
	e, err := NewMemoryEnforcer("")
	require.NoError(t, err)

	auth, err := NewAuthorization(e)
	require.NoError(t, err)
	require.NoError(t, SeedDefaultPolicies(context.Background(), auth))
	require.NoError(t, AssignHospitalMember(context.Background(), auth, 4, 2))

	ok, err := auth.Enforce(context.Background(), VeterinarianSubject(4), HospitalDomain(2), ResourceHospitalMembers, ActionRead)
	require.NoError(t, err)
	assert.True(t, ok)
}
