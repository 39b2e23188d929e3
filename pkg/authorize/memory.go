package authorize

import (
	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// NewMemoryEnforcer builds an enforcer whose policy lives only in process
// memory. It is used when no casbin database is configured.
func NewMemoryEnforcer(modelPath string) (*casbin.DistributedEnforcer, error) {
	m, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}

	// An adapter with an empty path loads nothing.
	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(""))
	if err != nil {
		return nil, err
	}
	e.EnableAutoSave(false)
	return e, nil
}
