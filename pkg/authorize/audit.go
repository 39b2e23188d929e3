package authorize

import (
	"context"
	"log/slog"
	"time"
)

// AuditedAuthorization wraps an IAuthorization implementation with audit logging.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	attrs := []any{
		"subject", string(subject),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}

	switch {
	case err != nil:
		a.logger.ErrorContext(ctx, "authz_decision", append(attrs, "error", err.Error())...)
	case allowed:
		a.logger.InfoContext(ctx, "authz_decision", attrs...)
	default:
		a.logger.WarnContext(ctx, "authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	added, err := a.inner.AddRoleForUserInDomain(ctx, subject, role, domain)
	a.change(ctx, "authz_role_change", err,
		"operation", "add_role", "subject", string(subject), "role", string(role), "domain", string(domain), "changed", added)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	removed, err := a.inner.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	a.change(ctx, "authz_role_change", err,
		"operation", "remove_role", "subject", string(subject), "role", string(role), "domain", string(domain), "changed", removed)
	return removed, err
}

func (a *AuditedAuthorization) GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.GetRolesForUserInDomain(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, domain, object, action, effect)
	a.change(ctx, "authz_permission_change", err,
		"operation", "add_permission", "role", string(role), "domain", string(domain),
		"resource", string(object), "action", string(action), "effect", string(effect), "changed", added)
	return added, err
}

func (a *AuditedAuthorization) change(ctx context.Context, msg string, err error, attrs ...any) {
	if err != nil {
		a.logger.ErrorContext(ctx, msg, append(attrs, "error", err.Error())...)
		return
	}
	a.logger.InfoContext(ctx, msg, attrs...)
}
