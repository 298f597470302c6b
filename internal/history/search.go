package history

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// searchFloor is the minimum Jaro-Winkler similarity for a fuzzy hit.
// Substring matches always qualify.
const searchFloor = 0.70

// Search returns entries whose titles match query, best matches first and
// newest-first among equal scores. Matching is case-insensitive: exact
// substrings count as full hits, everything else is ranked by Jaro-Winkler
// similarity, which favors shared prefixes.
func (s *Store) Search(query string, limit int) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.List(limit)
	}

	type scored struct {
		entry Entry
		score float64
		pos   int
	}

	var hits []scored
	for i, e := range s.List(0) {
		title := strings.ToLower(e.Title)
		score := float64(edlib.JaroWinklerSimilarity(query, title))
		if strings.Contains(title, query) {
			score = 1
		}
		if score < searchFloor {
			continue
		}
		hits = append(hits, scored{entry: e, score: score, pos: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out
}
