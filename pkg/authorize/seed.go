package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies are the permissions every hospital domain shares.
var DefaultPolicies = []PermissionPolicy{
	{RoleHospitalAdmin, WildcardDomain, ResourceHospital, ActionManage, EffectAllow},
	{RoleHospitalAdmin, WildcardDomain, ResourceHospitalMembers, ActionManage, EffectAllow},

	{RoleHospitalMember, WildcardDomain, ResourceHospital, ActionRead, EffectAllow},
	{RoleHospitalMember, WildcardDomain, ResourceHospitalMembers, ActionRead, EffectAllow},
}

// SeedDefaultPolicies installs DefaultPolicies. Existing rows are left alone.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	for _, p := range DefaultPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default hospital policies", "count", len(DefaultPolicies))
	return nil
}

// AssignHospitalAdmin makes vetID the administrator of hospitalID.
// Called when a veterinarian creates a hospital.
func AssignHospitalAdmin(ctx context.Context, auth IAuthorization, vetID, hospitalID int64) error {
	_, err := auth.AddRoleForUserInDomain(ctx, VeterinarianSubject(vetID), RoleHospitalAdmin, HospitalDomain(hospitalID))
	return err
}

// AssignHospitalMember grants the member role when a veterinarian joins.
func AssignHospitalMember(ctx context.Context, auth IAuthorization, vetID, hospitalID int64) error {
	_, err := auth.AddRoleForUserInDomain(ctx, VeterinarianSubject(vetID), RoleHospitalMember, HospitalDomain(hospitalID))
	return err
}

// RevokeHospitalRoles removes every hospital role vetID holds in hospitalID.
func RevokeHospitalRoles(ctx context.Context, auth IAuthorization, vetID, hospitalID int64) error {
	subject := VeterinarianSubject(vetID)
	domain := HospitalDomain(hospitalID)

	roles, err := auth.GetRolesForUserInDomain(ctx, subject, domain)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if _, err := auth.RemoveRoleForUserInDomain(ctx, subject, r, domain); err != nil {
			return err
		}
	}
	return nil
}
