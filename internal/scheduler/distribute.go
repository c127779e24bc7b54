package scheduler

// Distribute splits total tasks across people round-robin: everyone gets
// total/len(people) and the first total%len(people) people get one more.
// A repeated name counts once, at its first position. The counts always sum
// to total and differ by at most one.
func Distribute(total int, people []string) map[string]int {
	people = uniqueNames(people)
	out := make(map[string]int, len(people))
	k := len(people)
	if k == 0 {
		return out
	}

	base := floorDiv(total, k)
	remainder := total - base*k
	for i, person := range people {
		n := base
		if i < remainder {
			n++
		}
		out[person] = n
	}
	return out
}

func uniqueNames(people []string) []string {
	seen := make(map[string]bool, len(people))
	out := make([]string, 0, len(people))
	for _, p := range people {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// floorDiv rounds toward negative infinity so the remainder is never negative.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
