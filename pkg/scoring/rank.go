package scoring

import (
	"cmp"
	"slices"
)

// rank assigns positions and counterfactual positions and sorts scored by
// position. DNF entrants are always behind finishers.
func rank(scored []scoredEntry) {
	slices.SortFunc(scored, func(a, b scoredEntry) int {
		return compare(&a, &b, a.displayed(), b.displayed())
	})
	// counterfactual: same ordering with luck held at zero
	cf := make([]*scoredEntry, len(scored))
	for i := range scored {
		scored[i].position = i + 1
		cf[i] = &scored[i]
	}
	slices.SortFunc(cf, func(a, b *scoredEntry) int {
		return compare(a, b, clamp(a.preLuck()), clamp(b.preLuck()))
	})
	for i, se := range cf {
		se.cfPosition = i + 1
	}
}

// compare orders by DNF status, score desc, unclamped pre-luck desc, car id asc.
func compare(a, b *scoredEntry, scoreA, scoreB float64) int {
	if a.dnf != b.dnf {
		if a.dnf {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(scoreB, scoreA); c != 0 {
		return c
	}
	if c := cmp.Compare(b.preLuck(), a.preLuck()); c != 0 {
		return c
	}
	return cmp.Compare(a.entry.CarID, b.entry.CarID)
}
