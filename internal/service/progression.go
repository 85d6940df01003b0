package service

import (
	"strconv"
	"strings"
)

// maxClassLevel is the program ceiling; there is no class above level 9.
const maxClassLevel = 9

// ParseClassLevel extracts the numeric level from a class name, e.g.
// "Giao Ly 3" -> 3, "Viet Ngu 5" -> 5. The second return value is false
// when the name carries no trailing number.
func ParseClassLevel(className string) (int, bool) {
	trimmed := strings.TrimSpace(className)

	end := len(trimmed)
	start := end
	for start > 0 && trimmed[start-1] >= '0' && trimmed[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}

	level, err := strconv.Atoi(trimmed[start:end])
	if err != nil {
		return 0, false
	}

	return level, true
}

// NextClassName returns the class name one level up, e.g. "Viet Ngu 5" ->
// "Viet Ngu 6". The second return value is false when the name has no level
// or the level is already at the program ceiling.
func NextClassName(className string) (string, bool) {
	trimmed := strings.TrimSpace(className)

	level, ok := ParseClassLevel(trimmed)
	if !ok || level >= maxClassLevel {
		return "", false
	}

	end := len(trimmed)
	start := end
	for start > 0 && trimmed[start-1] >= '0' && trimmed[start-1] <= '9' {
		start--
	}

	return trimmed[:start] + strconv.Itoa(level+1), true
}
