package policy

// Result is the outcome of a policy check. Reason is only meaningful when
// Valid is false.
type Result struct {
	Valid  bool
	Reason string
}

// CheckSize decides whether a file of the given kind and size may be
// relayed. The current policy accepts everything; this is a deliberate
// placeholder for integrators, not a missing limit.
func CheckSize(kind string, sizeBytes int64) Result {
	return Result{Valid: true}
}
