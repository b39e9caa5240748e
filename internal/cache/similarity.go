package cache

// Ratio computes a similarity ratio between two strings in [0, 1],
// defined as 2*M/T where M is the total size of matched blocks found
// by recursive longest-common-substring matching and T is the total
// length of both strings. Two empty strings are fully similar.
//
// The matching follows the classic diff "matching blocks" approach so
// near-identical queries with small edits score close to 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matches := matchingSize(ra, rb)
	return 2.0 * float64(matches) / float64(total)
}

// matchingSize sums the lengths of all matching blocks between a and b.
func matchingSize(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + k, s.ahi, j + k, s.bhi})
	}

	return matched
}

// longestMatch finds the longest block of a[alo:ahi] matching within
// b[blo:bhi], preferring the earliest such block.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}

	return besti, bestj, bestsize
}
