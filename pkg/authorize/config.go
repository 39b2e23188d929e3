package authorize

import "github.com/iequus/iequus_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the model file; DefaultModel is used when empty.
	CasbinModelPath string

	// EnableAudit logs every decision and policy change.
	EnableAudit bool
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath: c.CasbinModelPath,
		EnableAudit:     c.EnableAudit,
	}
}
