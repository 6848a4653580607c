package nagios

import "fmt"

type (
	// T is a monitoring plugin status.
	T int
)

const (
	Ok T = iota
	Warning
	Critical
	Unknown
)

var (
	toString = map[T]string{
		Ok:       "OK",
		Warning:  "WARNING",
		Critical: "CRITICAL",
		Unknown:  "UNKNOWN",
	}

	// rank orders statuses for Worst. CRITICAL dominates UNKNOWN so a
	// confirmed problem is never masked by an indeterminate one.
	rank = map[T]int{
		Ok:       0,
		Warning:  1,
		Unknown:  2,
		Critical: 3,
	}
)

func (t T) String() string {
	if s, ok := toString[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ExitCode returns the process exit code the monitoring scheduler expects
// for this status.
func (t T) ExitCode() int {
	return int(t)
}

// Worst returns the most severe of the statuses.
func Worst(l ...T) T {
	worst := Ok
	for _, t := range l {
		if rank[t] > rank[worst] {
			worst = t
		}
	}
	return worst
}

// Line formats the single plugin output line.
func Line(t T, body string) string {
	return fmt.Sprintf("%s: %s", t, body)
}
