package names

import "strings"

// MatchThreshold is the minimum similarity percentage at which a fuzzy
// match is accepted.
const MatchThreshold = 80

// NoMatch is the index returned by Match when no roster name reaches the
// threshold.
const NoMatch = -1

// Match reconciles a candidate name against the ordered roster names.
// Exact canonical equality wins with confidence 100; ties resolve to the
// first roster index. Otherwise the best fuzzy similarity is accepted at
// or above MatchThreshold. Returns (NoMatch, 0) when nothing qualifies.
// Match never mutates its inputs.
func Match(candidate string, rosterNames []string) (int, int) {
	canonical := Canonicalize(candidate)

	canonicalRoster := make([]string, len(rosterNames))
	for i, name := range rosterNames {
		canonicalRoster[i] = Canonicalize(name)
	}

	for i, name := range canonicalRoster {
		if name != "" && name == canonical {
			return i, 100
		}
	}

	bestIdx, bestScore := NoMatch, 0
	for i, name := range canonicalRoster {
		if score := similarity(canonical, name); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestScore >= MatchThreshold {
		return bestIdx, bestScore
	}
	return NoMatch, 0
}

// similarity scores two canonical names on a 0-100 scale. The first two
// tokens are compared pairwise: exact token equality counts 1.0, a partial
// match counts 0.9 when both tokens have length >= 3 and at least 80% of
// the candidate token's characters appear in the roster token. The weight
// sum is divided by a fixed 2 regardless of how many pairs were compared.
// This is a directional character-containment measure, not edit distance;
// downstream thresholds are calibrated to it.
func similarity(candidate, target string) int {
	if candidate == target && candidate != "" {
		return 100
	}

	candTokens := strings.Fields(candidate)
	targetTokens := strings.Fields(target)
	if len(candTokens) == 0 || len(targetTokens) == 0 {
		return 0
	}

	pairs := min(2, min(len(candTokens), len(targetTokens)))

	matches := 0.0
	for i := 0; i < pairs; i++ {
		ct, tt := candTokens[i], targetTokens[i]
		switch {
		case ct == tt:
			matches += 1.0
		case len(ct) >= 3 && len(tt) >= 3:
			if containment(ct, tt) >= 0.8 {
				matches += 0.9
			}
		}
	}

	return int(matches / 2 * 100)
}

// containment is the fraction of candidate characters present in the
// target, relative to the longer token.
func containment(candidate, target string) float64 {
	common := 0
	for _, c := range candidate {
		if strings.ContainsRune(target, c) {
			common++
		}
	}
	return float64(common) / float64(max(len(candidate), len(target)))
}
