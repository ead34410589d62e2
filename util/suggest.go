package util

import "github.com/antzucaro/matchr"

// NameDistance computes an edit distance between two arbitrary-length
// strings, for use when comparing locus names rather than fixed-length
// barcodes. It does not require s1 and s2 to have the same length and
// takes no downstream-extension strings.
func NameDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		cur[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(r2)]
}

// SuggestName finds the candidate in candidates most similar to name, using
// Jaro-Winkler similarity with edit distance as a tie-breaker. It returns
// the empty string if candidates is empty or nothing clears minSimilarity.
func SuggestName(name string, candidates []string, minSimilarity float64) string {
	best := ""
	bestSim := minSimilarity
	bestDist := -1
	for _, c := range candidates {
		sim := matchr.JaroWinkler(name, c, false)
		if sim < bestSim {
			continue
		}
		dist := NameDistance(name, c)
		if sim > bestSim || dist < bestDist {
			best, bestSim, bestDist = c, sim, dist
		}
	}
	return best
}
