package safety

import (
	"errors"
	"testing"
)

// TestProtectedNodeBlocking verifies directory nodes are blocked but
// installed files beneath them stay removable
func TestProtectedNodeBlocking(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root slash", "/", true},
		{"etc", "/etc", true},
		{"usr", "/usr", true},
		{"usr local", "/usr/local", true},
		{"usr bin", "/usr/bin", true},
		{"boot", "/boot", true},
		{"lib", "/lib", true},
		{"sbin", "/sbin", true},
		{"var", "/var", true},
		{"opt", "/opt", true},
		{"installed binary", "/usr/local/bin/app", false},
		{"installed library", "/usr/lib/libapp.so", false},
		{"installed config", "/etc/app/app.conf", false},
		{"opt subtree file", "/opt/app/bin/app", false},
		{"home user file", "/home/user/file.txt", false},
	}

	protected := defaultProtected()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsProtectedPath(tt.path, protected)
			if result != tt.expected {
				t.Errorf("IsProtectedPath(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestProtectedSubtreeBlocking verifies the tool's own state and kernel
// filesystems are blocked in full
func TestProtectedSubtreeBlocking(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"tool state dir", "/var/lib/manifest-sweep", true},
		{"tool state file", "/var/lib/manifest-sweep/removals.db", true},
		{"tool config dir", "/etc/manifest-sweep", true},
		{"tool config file", "/etc/manifest-sweep/config.yaml", true},
		{"proc entry", "/proc/self/environ", true},
		{"sys entry", "/sys/kernel/something", true},
		{"dev node", "/dev/sda", true},
		{"ordinary install target", "/usr/local/bin/app", false},
		{"var sibling", "/var/lib/other-tool/state", false},
	}

	subtrees := defaultProtectedSubtrees(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsInProtectedSubtree(tt.path, subtrees)
			if result != tt.expected {
				t.Errorf("IsInProtectedSubtree(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestAllowedRootEnforcement verifies paths are restricted to allowed roots
// when roots are configured
func TestAllowedRootEnforcement(t *testing.T) {
	allowed := []string{"/opt/app", "/usr/local/app"}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"inside opt root", "/opt/app/bin/app", true},
		{"inside usr root", "/usr/local/app/lib.so", true},
		{"allowed root exact", "/opt/app", true},
		{"sibling outside", "/opt/other/file", false},
		{"parent of allowed", "/opt", false},
		{"completely different", "/home/user/file.txt", false},
		{"root", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWithinAllowedRoots(tt.path, allowed)
			if result != tt.expected {
				t.Errorf("IsWithinAllowedRoots(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestTraversalDetection verifies ".." segments are rejected in raw input
func TestTraversalDetection(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"plain path", "/opt/app/file", false},
		{"dotdot middle", "/opt/app/../../etc/passwd", true},
		{"dotdot leading", "../relative", true},
		{"dots in name", "/opt/app/file..txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectTraversal(tt.path)
			if result != tt.expected {
				t.Errorf("DetectTraversal(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestValidateRemoveTarget exercises the full authorization chain
func TestValidateRemoveTarget(t *testing.T) {
	v := NewValidator(nil, nil)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"installed file allowed", "/usr/local/bin/app", nil},
		{"empty path", "", ErrInvalidPath},
		{"whitespace path", "   ", ErrInvalidPath},
		{"relative path", "opt/app/file", ErrRelativePath},
		{"traversal", "/opt/app/../../etc/shadow", ErrTraversal},
		{"root", "/", ErrProtectedPath},
		{"protected node", "/usr", ErrProtectedPath},
		{"tool state", "/var/lib/manifest-sweep/removals.db", ErrProtectedPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRemoveTarget(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRemoveTarget(%s) = %v, expected nil", tt.path, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRemoveTarget(%s) = %v, expected %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestValidateRemoveTargetWithRoots verifies allowed-root restriction
func TestValidateRemoveTargetWithRoots(t *testing.T) {
	v := NewValidator([]string{"/opt/app"}, nil)

	if err := v.ValidateRemoveTarget("/opt/app/bin/app"); err != nil {
		t.Errorf("path inside allowed root rejected: %v", err)
	}
	if err := v.ValidateRemoveTarget("/usr/local/bin/app"); !errors.Is(err, ErrOutsideAllowed) {
		t.Errorf("expected ErrOutsideAllowed, got %v", err)
	}
}

// TestExtraProtectedSubtrees verifies configured extras are honored
func TestExtraProtectedSubtrees(t *testing.T) {
	v := NewValidator(nil, []string{"/srv/keep"})

	if err := v.ValidateRemoveTarget("/srv/keep/data.bin"); !errors.Is(err, ErrProtectedPath) {
		t.Errorf("expected ErrProtectedPath for extra subtree, got %v", err)
	}
	if err := v.ValidateRemoveTarget("/srv/other/data.bin"); err != nil {
		t.Errorf("sibling of extra subtree rejected: %v", err)
	}
}
