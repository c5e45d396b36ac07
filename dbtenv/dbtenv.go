// Package dbtenv loads process-wide runtime configuration from the
// environment, per spec §6. Every other package that cares about
// debug/verbose logging or the client's preferred ATT MTU and scan
// timeout reads it through this package rather than calling os.Getenv
// directly, so the lookup and parsing rules live in one place.
package dbtenv

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const (
	keyDebug      = "direct_bt.debug"
	keyVerbose    = "direct_bt.verbose"
	keyMTU        = "direct_bt.mtu"
	keyScanMillis = "direct_bt.scan_timeout_ms"

	// DefaultMTU is the client's preferred ATT MTU; used when
	// direct_bt.mtu is unset or unparseable.
	DefaultMTU = 185
	// DefaultScanTimeout is applied when direct_bt.scan_timeout_ms is
	// unset or unparseable: a best-effort cap on a single discovery
	// session before the caller is expected to re-issue start-discovery.
	DefaultScanTimeout = 10000
)

// Config is the resolved, process-wide configuration snapshot.
type Config struct {
	// Debug lists the enabled debug logging categories; a bare "true"
	// is represented as a single "*" entry, "false"/absent as nil.
	Debug []string
	// Verbose mirrors Debug for the verbose logging categories. Per
	// spec §6, verbose implies debug is disabled unless both are
	// explicitly set.
	Verbose []string
	// MTU is the client's preferred ATT MTU override.
	MTU int
	// ScanTimeoutMillis bounds a single discovery session.
	ScanTimeoutMillis int
}

// Load reads direct_bt.debug, direct_bt.verbose, direct_bt.mtu, and
// direct_bt.scan_timeout_ms from the environment. Unset or malformed
// values fall back to their defaults rather than failing process
// start, consistent with spec §6 describing these as optional.
func Load() *Config {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		logrus.WithError(err).Warn("dbtenv: environment load failed, using defaults")
		return &Config{MTU: DefaultMTU, ScanTimeoutMillis: DefaultScanTimeout}
	}

	debug := parseCategories(k.String(keyDebug))
	verbose := parseCategories(k.String(keyVerbose))
	if len(verbose) > 0 && len(debug) == 0 {
		debug = nil
	}

	cfg := &Config{
		Debug:             debug,
		Verbose:           verbose,
		MTU:               k.Int(keyMTU),
		ScanTimeoutMillis: k.Int(keyScanMillis),
	}
	if cfg.MTU <= 0 {
		cfg.MTU = DefaultMTU
	}
	if cfg.ScanTimeoutMillis <= 0 {
		cfg.ScanTimeoutMillis = DefaultScanTimeout
	}
	return cfg
}

// parseCategories implements the "true/false/comma-list" grammar from
// spec §6: "true" enables every category (represented as "*"), "false"
// or empty disables logging entirely, and anything else is treated as
// a comma-separated category list.
func parseCategories(raw string) []string {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "false", "0":
		return nil
	case "true", "1":
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	categories := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			categories = append(categories, p)
		}
	}
	return categories
}

// HasCategory reports whether name is enabled by either Debug or
// Verbose, or whether logging was enabled wholesale via "true".
func (c *Config) HasCategory(name string) bool {
	return containsCategory(c.Debug, name) || containsCategory(c.Verbose, name)
}

func containsCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == "*" || strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
