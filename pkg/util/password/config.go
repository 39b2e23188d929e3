package password

import "github.com/iequus/iequus_backend/config"

// Params defines the Argon2id parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follows the OWASP argon2id recommendation.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// FromCentralConfig converts config.PasswordConfig, keeping defaults for
// zero values. Low memory mode caps memory at 32 MiB and adds an iteration.
func FromCentralConfig(c config.PasswordConfig) Params {
	p := DefaultParams()
	if c.MemoryKiB > 0 {
		p.Memory = c.MemoryKiB
	}
	if c.Iterations > 0 {
		p.Iterations = c.Iterations
	}
	if c.Parallelism > 0 {
		p.Parallelism = c.Parallelism
	}
	if c.SaltLength > 0 {
		p.SaltLength = c.SaltLength
	}
	if c.KeyLength > 0 {
		p.KeyLength = c.KeyLength
	}
	if c.LowMemoryMode && p.Memory > 32*1024 {
		p.Memory = 32 * 1024
		p.Iterations++
	}
	return p
}
