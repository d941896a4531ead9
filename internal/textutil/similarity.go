package textutil

// Similarity computes a normalized edit-distance ratio between two strings
// in [0, 1], where 1 means equal. Comparison is rune-based so multi-byte
// scripts score correctly.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein(ra, rb)
	return 1 - float64(dist)/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// SpanMatch describes the best contiguous region of a haystack matching a
// needle, with its similarity score.
type SpanMatch struct {
	Start int // rune offset into the haystack
	End   int // exclusive rune offset
	Score float64
}

// BestSpanMatch finds the contiguous substring of haystack most similar to
// needle. It runs the search variant of the edit-distance recurrence where
// deletions before and after the matched span are free, so a needle buried
// in a longer echo still scores against just its own region.
func BestSpanMatch(haystack, needle string) SpanMatch {
	hs := []rune(haystack)
	nd := []rune(needle)
	if len(nd) == 0 {
		return SpanMatch{Score: 1}
	}
	if len(hs) == 0 {
		return SpanMatch{Score: 0}
	}

	// dist[i][j]: edit distance between needle[:j] and the best suffix of
	// haystack[:i]. Row zero is free (span may start anywhere).
	rows := len(hs) + 1
	cols := len(nd) + 1
	dist := make([][]int, rows)
	start := make([][]int, rows)
	for i := range dist {
		dist[i] = make([]int, cols)
		start[i] = make([]int, cols)
		dist[i][0] = 0
		start[i][0] = i
	}
	for j := 1; j < cols; j++ {
		dist[0][j] = j
		start[0][j] = 0
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if hs[i-1] == nd[j-1] {
				cost = 0
			}
			sub := dist[i-1][j-1] + cost
			del := dist[i-1][j] + 1
			ins := dist[i][j-1] + 1
			switch {
			case sub <= del && sub <= ins:
				dist[i][j] = sub
				start[i][j] = start[i-1][j-1]
			case del <= ins:
				dist[i][j] = del
				start[i][j] = start[i-1][j]
			default:
				dist[i][j] = ins
				start[i][j] = start[i][j-1]
			}
		}
	}

	bestEnd := 0
	bestDist := dist[0][cols-1]
	for i := 1; i < rows; i++ {
		if dist[i][cols-1] < bestDist {
			bestDist = dist[i][cols-1]
			bestEnd = i
		}
	}
	return SpanMatch{
		Start: start[bestEnd][cols-1],
		End:   bestEnd,
		Score: 1 - float64(bestDist)/float64(len(nd)),
	}
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
