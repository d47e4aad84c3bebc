package checkapi

import (
	"context"
	"errors"
	"maps"
	"time"
)

// ErrNetworkSkipped is wrapped in the Network error returned when network access is disabled.
var ErrNetworkSkipped = errors.New("network access disabled (--skip-network)")

// DefaultNetworkTimeout bounds network operations when nothing else is configured.
const DefaultNetworkTimeout = 10 * time.Second

// Context carries the inputs one check sees for one testable.
type Context struct {
	SkipNetwork    bool
	NetworkTimeout time.Duration
	// Configuration maps check ID to that check's configuration value.
	Configuration map[string]any
	// CheckMetadata is the running check's registration metadata.
	CheckMetadata any
	FullLists     bool
	Overrides     []Override
	Cache         *Cache
}

// NewContext returns a base context with an empty cache.
func NewContext() *Context {
	return &Context{
		NetworkTimeout: DefaultNetworkTimeout,
		Configuration:  map[string]any{},
		Cache:          NewCache(),
	}
}

// WithNewCache returns a shallow copy with a fresh cache.
func (c *Context) WithNewCache() *Context {
	out := *c
	out.Cache = NewCache()
	return &out
}

// Specialize derives the context for running check against one testable.
//
// The per-check user configuration is merged over the base configuration for
// that check, then any keys still missing are taken from defaults. Profile
// overrides are appended after the base overrides.
func (c *Context) Specialize(check *Check, userConfig map[string]any, defaults map[string]any, profileOverrides []Override, cache *Cache) *Context {
	out := *c
	out.Configuration = maps.Clone(c.Configuration)
	if out.Configuration == nil {
		out.Configuration = map[string]any{}
	}

	local := map[string]any{}
	if base, ok := out.Configuration[check.ID].(map[string]any); ok {
		maps.Copy(local, base)
	}
	if user, ok := userConfig[check.ID].(map[string]any); ok {
		maps.Copy(local, user)
	}
	for k, v := range defaults {
		if _, ok := local[k]; !ok {
			local[k] = v
		}
	}
	out.Configuration[check.ID] = local

	out.Overrides = make([]Override, 0, len(c.Overrides)+len(profileOverrides))
	out.Overrides = append(out.Overrides, c.Overrides...)
	out.Overrides = append(out.Overrides, profileOverrides...)

	out.CheckMetadata = check.Metadata
	out.Cache = cache
	return &out
}

// LocalConfig returns the configuration table of checkID, or an empty map.
func (c *Context) LocalConfig(checkID string) map[string]any {
	if m, ok := c.Configuration[checkID].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// ConfigNumber reads a numeric configuration value regardless of which
// document format decoded it.
func (c *Context) ConfigNumber(checkID, key string) (float64, bool) {
	switch v := c.LocalConfig(checkID)[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// NetworkContext returns a context bounded by the network timeout. It fails
// with a Network error when network access is disabled.
func (c *Context) NetworkContext(parent context.Context) (context.Context, context.CancelFunc, error) {
	if c.SkipNetwork {
		return nil, nil, NetworkError(ErrNetworkSkipped)
	}
	if parent == nil {
		parent = context.Background()
	}
	if c.NetworkTimeout <= 0 {
		ctx, cancel := context.WithCancel(parent)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(parent, c.NetworkTimeout)
	return ctx, cancel, nil
}
