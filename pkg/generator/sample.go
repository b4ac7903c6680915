package generator

import "math/rand/v2"

// SampleDistinct draws k distinct ids from [1, n] without replacement.
// k is capped at n, so asking for more than the population returns all of it
// in random order.
func SampleDistinct(r *rand.Rand, n, k int) []int {
	k = min(k, n)
	if k <= 0 {
		return nil
	}

	// Dense samples: a partial shuffle is cheaper than tracking collisions.
	if k*4 >= n {
		perm := r.Perm(n)[:k]
		for i := range perm {
			perm[i]++
		}
		return perm
	}

	// Floyd's algorithm, O(k) memory.
	seen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k + 1; j <= n; j++ {
		t := r.IntN(j) + 1
		if _, dup := seen[t]; dup {
			t = j
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
