package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
	ErrTraversal      = errors.New("path traversal detected")
	ErrRelativePath   = errors.New("manifest path must be absolute")
)

// Validator enforces the safety contract for all removals.
// A manifest is attacker-adjacent input: it was written by an earlier
// install step, but nothing stops a corrupted or hand-edited manifest from
// listing /etc/passwd. Every target is checked before the deleter sees it.
type Validator struct {
	AllowedRoots      []string
	ProtectedPaths    []string
	ProtectedSubtrees []string
}

// NewValidator creates a validator with optional allowed roots and
// additional protected subtrees. Empty allowed roots means any path outside
// the protected set may be removed, since install manifests legitimately
// span several filesystem prefixes (/usr/local, /opt, /etc/app, ...).
func NewValidator(allowed []string, extraProtected []string) *Validator {
	return &Validator{
		AllowedRoots:      normalizeRoots(allowed),
		ProtectedPaths:    defaultProtected(),
		ProtectedSubtrees: defaultProtectedSubtrees(extraProtected),
	}
}

// ValidateRemoveTarget is the single source of truth for removal
// authorization. The path given is the final joined target (destdir prefix
// already applied). Returns a typed error on violation.
func (v *Validator) ValidateRemoveTarget(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if !filepath.IsAbs(path) {
		return ErrRelativePath
	}

	// Block ".." segments in the raw input before any cleaning
	if DetectTraversal(path) {
		return ErrTraversal
	}

	p := filepath.Clean(path)

	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	if IsInProtectedSubtree(p, v.ProtectedSubtrees) {
		return ErrProtectedPath
	}

	if len(v.AllowedRoots) > 0 && !IsWithinAllowedRoots(p, v.AllowedRoots) {
		return ErrOutsideAllowed
	}

	return nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	parts := strings.Split(filepath.ToSlash(raw), "/")
	for _, p := range parts {
		if p == ".." {
			return true
		}
	}
	return false
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if path matches a protected directory node.
// Only the exact nodes are blocked: files beneath the broad system roots
// are still removable because installers legitimately place files under
// /usr/local and /etc. Removing the roots themselves is never legitimate.
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	// Hard block: "/" exact
	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if p == prot {
			return true
		}
	}
	return false
}

// IsInProtectedSubtree checks if path is inside a fully protected subtree
// (the tool's own state plus kernel filesystems), where nothing at all may
// be removed
func IsInProtectedSubtree(path string, subtrees []string) bool {
	p := filepath.Clean(path)
	for _, s := range subtrees {
		if hasPathPrefix(p, s) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path has the given prefix
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return path == "/"
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}

// defaultProtected returns the directory nodes that may never be removed
func defaultProtected() []string {
	return []string{
		"/",
		"/etc",
		"/bin",
		"/usr",
		"/usr/bin",
		"/usr/lib",
		"/usr/local",
		"/boot",
		"/lib",
		"/lib64",
		"/sbin",
		"/home",
		"/var",
		"/var/lib",
		"/var/log",
		"/opt",
		"/tmp",
	}
}

// defaultProtectedSubtrees returns subtrees where no removal is allowed,
// plus any extras from configuration
func defaultProtectedSubtrees(extra []string) []string {
	base := []string{
		"/proc",
		"/sys",
		"/dev",
		"/var/lib/manifest-sweep",
		"/etc/manifest-sweep",
	}
	return append(base, extra...)
}
