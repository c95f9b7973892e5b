// Package status ranks analysis verdicts so that sub-results combine by max rank.
package status

type Level string

const (
	Normal  Level = "NORMAL"
	Safe    Level = "SAFE"
	Warning Level = "WARNING"
	Danger  Level = "DANGER"
	Error   Level = "ERROR"
)

// Severity maps NORMAL and SAFE to 0, WARNING to 1, DANGER to 2, anything else to 3.
func Severity(l Level) int {
	switch l {
	case Normal, Safe:
		return 0
	case Warning:
		return 1
	case Danger:
		return 2
	default:
		return 3
	}
}

// FromSeverity is the inverse of Severity on the overall scale.
func FromSeverity(s int) Level {
	switch s {
	case 0:
		return Normal
	case 1:
		return Warning
	case 2:
		return Danger
	default:
		return Error
	}
}

// Worst returns the overall level for the given sub-levels. No levels means NORMAL.
func Worst(levels ...Level) Level {
	worst := 0
	for _, l := range levels {
		if s := Severity(l); s > worst {
			worst = s
		}
	}
	return FromSeverity(worst)
}

// IsAlert reports whether the level should be surfaced as a warning line.
func (l Level) IsAlert() bool {
	return l == Warning || l == Danger
}
