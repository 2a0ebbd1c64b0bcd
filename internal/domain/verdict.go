package domain

// Verdict is the ordinal health classification of one completed check.
type Verdict string

const (
	VerdictHealthy Verdict = "healthy"
	VerdictWarning Verdict = "warning"
	VerdictError   Verdict = "error"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictHealthy, VerdictWarning, VerdictError:
		return true
	}
	return false
}
