// Package capabilities implements the Soplang capability policy: which
// host effects (file imports, reading stdin) a program may use.
package capabilities

import (
	"fmt"
	"sort"
)

// Capability IDs checked by the interpreter.
const (
	FSImport = "fs.import" // ka_keen reads other source files
	IOStdin  = "io.stdin"  // akhri/gelin read from standard input
)

var known = map[string]string{
	FSImport: "ka_keen: read and execute other source files",
	IOStdin:  "akhri/gelin: read lines from standard input",
}

// Known returns every capability ID in sorted order.
func Known() []string {
	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe returns the one-line description of a capability.
func Describe(id string) string {
	return known[id]
}

// Policy defines which capabilities are allowed for program execution.
type Policy struct {
	Allowed map[string]bool
}

// IsAllowed checks whether a capability is permitted by this policy.
func (p *Policy) IsAllowed(cap string) bool {
	if p == nil || p.Allowed == nil {
		return true
	}
	return p.Allowed[cap]
}

// New builds a policy from allow and deny lists. An empty allow list starts
// from every known capability; deny overrides allow. Unknown IDs are errors.
func New(allow, deny []string) (*Policy, error) {
	allowed := make(map[string]bool)

	if len(allow) == 0 {
		for id := range known {
			allowed[id] = true
		}
	}
	for _, cap := range allow {
		if _, ok := known[cap]; !ok {
			return nil, fmt.Errorf("unknown capability %q", cap)
		}
		allowed[cap] = true
	}

	// Deny overrides allow
	for _, cap := range deny {
		if _, ok := known[cap]; !ok {
			return nil, fmt.Errorf("unknown capability %q", cap)
		}
		delete(allowed, cap)
	}

	return &Policy{Allowed: allowed}, nil
}

// AllowAll returns a policy that permits all capabilities.
func AllowAll() *Policy {
	return &Policy{Allowed: nil} // nil signals "allow all" in the interpreter
}

// DenyAll returns a policy that denies all capabilities.
func DenyAll() *Policy {
	return &Policy{Allowed: make(map[string]bool)}
}
