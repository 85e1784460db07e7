package tui

import (
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// matchChoice resolves typed input to an option index. It accepts the
// option number, its key or label, a unique prefix, or a near miss within a
// few typos. Ambiguous input matches nothing.
func matchChoice(input string, opts []option) (int, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" || len(opts) == 0 {
		return 0, false
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(opts) {
			return n - 1, true
		}
		return 0, false
	}

	for i, o := range opts {
		for _, cand := range o.candidates() {
			if cand == in {
				return i, true
			}
		}
	}

	if len(in) >= 2 {
		found := -1
		for i, o := range opts {
			for _, cand := range o.candidates() {
				if strings.HasPrefix(cand, in) {
					if found >= 0 && found != i {
						return 0, false
					}
					found = i
				}
			}
		}
		if found >= 0 {
			return found, true
		}
	}

	best, bestDist, tie := -1, 0, false
	for i, o := range opts {
		for _, cand := range o.candidates() {
			d := levenshtein.ComputeDistance(in, cand)
			if d > typoLimit(len(cand)) {
				continue
			}
			switch {
			case best < 0 || d < bestDist:
				best, bestDist, tie = i, d, false
			case d == bestDist && i != best:
				tie = true
			}
		}
	}
	if best < 0 || tie {
		return 0, false
	}
	return best, true
}

func typoLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
