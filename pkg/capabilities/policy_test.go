package capabilities_test

import (
	"testing"

	"github.com/soplang/soplang/pkg/capabilities"
)

func TestNewDefaultsToAllKnown(t *testing.T) {
	p, err := capabilities.New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, id := range capabilities.Known() {
		if !p.IsAllowed(id) {
			t.Errorf("expected %s to be allowed", id)
		}
	}
}

func TestNewDenyOverridesAllow(t *testing.T) {
	p, err := capabilities.New([]string{capabilities.FSImport, capabilities.IOStdin}, []string{capabilities.IOStdin})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.IsAllowed(capabilities.FSImport) {
		t.Error("fs.import should be allowed")
	}
	if p.IsAllowed(capabilities.IOStdin) {
		t.Error("io.stdin should be denied")
	}
}

func TestNewExplicitAllowIsExclusive(t *testing.T) {
	p, err := capabilities.New([]string{capabilities.IOStdin}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.IsAllowed(capabilities.FSImport) {
		t.Error("fs.import should not be allowed when only io.stdin is listed")
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	if _, err := capabilities.New([]string{"net.http"}, nil); err == nil {
		t.Error("expected error for unknown capability in allow")
	}
	if _, err := capabilities.New(nil, []string{"sh.exec"}); err == nil {
		t.Error("expected error for unknown capability in deny")
	}
}

func TestAllowAllAndDenyAll(t *testing.T) {
	if !capabilities.AllowAll().IsAllowed(capabilities.FSImport) {
		t.Error("AllowAll should allow fs.import")
	}
	if capabilities.DenyAll().IsAllowed(capabilities.FSImport) {
		t.Error("DenyAll should deny fs.import")
	}
	var nilPolicy *capabilities.Policy
	if !nilPolicy.IsAllowed(capabilities.IOStdin) {
		t.Error("nil policy should allow everything")
	}
}

func TestDescribe(t *testing.T) {
	for _, id := range capabilities.Known() {
		if capabilities.Describe(id) == "" {
			t.Errorf("missing description for %s", id)
		}
	}
}
