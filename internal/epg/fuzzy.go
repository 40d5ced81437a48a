// SPDX-License-Identifier: MIT
package epg

// Match finds the identifier for name: an exact key hit first, then the
// closest indexed key within maxDist edits. Distance ties are broken by
// shortest key, then lexical order; the candidate list is the frozen
// sorted key slice, so the result is fully deterministic.
func (ix *Index) Match(name string, maxDist int) (string, bool) {
	if !ix.frozen {
		ix.Freeze()
	}
	key := ix.namer.Key(name)
	if key == "" {
		return "", false
	}
	if id, ok := ix.byKey[key]; ok {
		return id, true
	}
	if maxDist <= 0 {
		return "", false
	}

	bestKey := ""
	bestDist := maxDist + 1
	for _, k := range ix.keys {
		// Cutoff one above the current best: any returned distance at
		// or below bestDist is exact, never truncated.
		d := levenshtein(key, k, bestDist+1)
		switch {
		case d < bestDist:
			bestDist, bestKey = d, k
		case d == bestDist && bestKey != "" && len(k) < len(bestKey):
			bestKey = k
		}
	}
	if bestDist > maxDist {
		return "", false
	}
	return ix.byKey[bestKey], true
}

// levenshtein computes the edit distance between a and b using two
// rolling rows. Computation aborts early once the distance provably
// reaches cutoff.
func levenshtein(a, b string, cutoff int) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	// Length difference is a lower bound on the distance.
	if diff := len(ra) - len(rb); diff >= cutoff || -diff >= cutoff {
		return cutoff
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minOf(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin >= cutoff {
			return cutoff
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func minOf(x, y, z int) int {
	if y < x {
		x = y
	}
	if z < x {
		x = z
	}
	return x
}
