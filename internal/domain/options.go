package domain

// CommonOptions contains options shared by every run of an orchestrator.
type CommonOptions struct {
	Verbose bool
	DryRun  bool
}
