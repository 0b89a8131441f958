package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutePolicy maps a screen path to the role ids allowed to open it.
type RoutePolicy map[string][]int

// DefaultRoutePolicy is the policy used when no file is configured.
func DefaultRoutePolicy() RoutePolicy {
	return RoutePolicy{
		"/dashboard": {1, 2, 3},
		"/clients":   {1},
		"/roles":     {1},
		"/users":     {1, 2, 3},
		"/activity":  {1},
	}
}

type policyFile struct {
	Routes map[string][]int `yaml:"routes"`
}

// LoadRoutePolicy returns the defaults overlaid with the routes listed in
// path. An empty path returns the defaults.
//
//	routes:
//	  /users: [1, 2]
func LoadRoutePolicy(path string) (RoutePolicy, error) {
	policy := DefaultRoutePolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route policy: %w", err)
	}
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse route policy: %w", err)
	}

	for route, roles := range f.Routes {
		if _, known := policy[route]; !known {
			return nil, fmt.Errorf("route policy: unknown screen %q", route)
		}
		if len(roles) == 0 {
			return nil, fmt.Errorf("route policy: %s allows no role", route)
		}
		policy[route] = roles
	}
	return policy, nil
}

// Roles returns the allowed roles for route. Unknown routes allow nobody.
func (p RoutePolicy) Roles(route string) []int {
	return p[route]
}
