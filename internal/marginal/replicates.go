package marginal

import "fmt"

// CombineReplicates averages groups of replicate measurement rows into one
// feature row per sample. groups holds the row indices of each sample; every
// group must be non-empty and every row must share X's width.
func CombineReplicates(X [][]float64, groups [][]int) ([][]float64, error) {
	out := make([][]float64, 0, len(groups))
	for gi, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("replicate group %d is empty", gi)
		}
		var acc []float64
		for _, i := range g {
			if i < 0 || i >= len(X) {
				return nil, fmt.Errorf("replicate group %d: row %d out of range", gi, i)
			}
			row := X[i]
			if acc == nil {
				acc = make([]float64, len(row))
			} else if len(row) != len(acc) {
				return nil, fmt.Errorf("replicate group %d: ragged row width %d != %d", gi, len(row), len(acc))
			}
			for j, v := range row {
				acc[j] += v
			}
		}
		for j := range acc {
			acc[j] /= float64(len(g))
		}
		out = append(out, acc)
	}
	return out, nil
}
