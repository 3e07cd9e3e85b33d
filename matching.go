package sedeval

// matchFunc reports whether reference r may be paired with estimate e.
type matchFunc func(r, e int) bool

// greedyMatch pairs references in order with the first unused estimate that
// fits. It returns, per reference, the index of its estimate or -1.
func greedyMatch(nref, nest int, fits matchFunc) []int {
	match := make([]int, nref)
	used := make([]bool, nest)
	for r := range match {
		match[r] = -1
		for e := 0; e < nest; e++ {
			if !used[e] && fits(r, e) {
				used[e] = true
				match[r] = e
				break
			}
		}
	}
	return match
}

// optimalMatch finds a maximum-cardinality pairing by augmenting paths.
// Candidates are tried in index order, so results are deterministic.
func optimalMatch(nref, nest int, fits matchFunc) []int {
	adj := make([][]int, nref)
	for r := range adj {
		for e := 0; e < nest; e++ {
			if fits(r, e) {
				adj[r] = append(adj[r], e)
			}
		}
	}

	owner := make([]int, nest)
	for e := range owner {
		owner[e] = -1
	}

	var augment func(r int, seen []bool) bool
	augment = func(r int, seen []bool) bool {
		for _, e := range adj[r] {
			if seen[e] {
				continue
			}
			seen[e] = true
			if owner[e] < 0 || augment(owner[e], seen) {
				owner[e] = r
				return true
			}
		}
		return false
	}
	for r := range adj {
		augment(r, make([]bool, nest))
	}

	match := make([]int, nref)
	for r := range match {
		match[r] = -1
	}
	for e, r := range owner {
		if r >= 0 {
			match[r] = e
		}
	}
	return match
}

func (m Matching) match(nref, nest int, fits matchFunc) []int {
	if m == MatchOptimal {
		return optimalMatch(nref, nest, fits)
	}
	return greedyMatch(nref, nest, fits)
}
