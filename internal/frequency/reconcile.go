package frequency

import "sort"

// Mapping is a partial ciphertext-to-plaintext substitution.
type Mapping map[rune]rune

// Reconcile pairs observed and reference characters of the same rank.
//
// A rank is skipped when its source is already mapped or its target is
// already someone's image; skipped sources stay unmapped.
func Reconcile(observed, reference Table) (Mapping, error) {
	if err := observed.Validate(); err != nil {
		return nil, err
	}
	if err := reference.Validate(); err != nil {
		return nil, err
	}
	obs := observed.Sorted()
	ref := reference.Sorted()
	n := len(obs)
	if len(ref) < n {
		n = len(ref)
	}

	mapping := make(Mapping, n)
	used := make(map[rune]struct{}, n)
	for i := 0; i < n; i++ {
		source, target := obs[i].Char, ref[i].Char
		if _, ok := mapping[source]; ok {
			continue
		}
		if _, ok := used[target]; ok {
			continue
		}
		mapping[source] = target
		used[target] = struct{}{}
	}
	return mapping, nil
}

// Unmapped returns observed characters without an image, in rank order.
func (m Mapping) Unmapped(observed Table) []rune {
	var out []rune
	for _, e := range observed.Sorted() {
		if _, ok := m[e.Char]; !ok {
			out = append(out, e.Char)
		}
	}
	return out
}

// Pairs returns the mapping ordered by source code point.
func (m Mapping) Pairs() [][2]rune {
	out := make([][2]rune, 0, len(m))
	for from, to := range m {
		out = append(out, [2]rune{from, to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
