package exitcodes

// Exit codes for manifest-sweep
// These codes form the operational contract with build systems and packaging scripts
const (
	Success         = 0 // Successful execution
	InvalidConfig   = 2 // Configuration file or flags invalid
	ManifestMissing = 3 // Manifest file absent, no removals attempted
	SafetyViolation = 4 // Safety validator blocked a removal target
	RemovalError    = 5 // A removal failed, run aborted at that entry
)
