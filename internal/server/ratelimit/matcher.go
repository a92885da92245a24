package ratelimit

import (
	"strings"
)

// unlimited lists the routes that never consume a token. Long-lived streams
// would otherwise drain the budget of a client that keeps a preview open.
var unlimited = map[string]bool{
	"GET /health":     true,
	"GET /api/events": true,
}

var unlimitedConfig = EndpointConfig{}

// MatchEndpoint returns the configuration governing a request, or nil when the
// default limit applies.
//
// Config paths use the ServeMux pattern syntax: a "{name}" segment matches
// any single segment, and a path ending in "/" matches everything below it.
// Exact and wildcard patterns win over prefixes; among prefixes the longest
// wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		cfg := unlimitedConfig
		return &cfg
	}

	segments := splitPath(path)
	var prefix *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if strings.HasSuffix(cfg.Path, "/") {
			if strings.HasPrefix(path, cfg.Path) && (prefix == nil || len(cfg.Path) > len(prefix.Path)) {
				prefix = cfg
			}
			continue
		}
		if patternMatches(splitPath(cfg.Path), segments) {
			return cfg
		}
	}
	return prefix
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func patternMatches(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}
