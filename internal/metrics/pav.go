package metrics

import (
	"math"
	"sort"
)

// pavPoint carries one pooled LR through the isotonic fit.
type pavPoint struct {
	lr    float64
	label int
	// class-local index, so transformed values can be written back in
	// input order
	idx int
}

// pavBlock is a merged monotonic block: value is the mean label of its
// members.
type pavBlock struct {
	sum   float64
	count float64
}

func (b pavBlock) value() float64 { return b.sum / b.count }

// PAVTransform fits a pool-adjacent-violators isotonic regression on the
// pooled class0+class1 LRs against their true labels and maps every input LR
// to the LR form p/(1-p) of its block's mean label. The mapping is
// nondecreasing in the input LR ordering.
//
// Extreme blocks made up of a single class produce 0 (pure class0) or +Inf
// (pure class1). Those values are valid here: a class0 sample can never land
// in a pure class1 block and vice versa, so the Cllr terms computed from the
// output stay finite.
func PAVTransform(lrClass0, lrClass1 []float64) (pav0, pav1 []float64) {
	n := len(lrClass0) + len(lrClass1)
	points := make([]pavPoint, 0, n)
	for i, v := range lrClass0 {
		points = append(points, pavPoint{lr: v, label: 0, idx: i})
	}
	for i, v := range lrClass1 {
		points = append(points, pavPoint{lr: v, label: 1, idx: i})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].lr < points[j].lr
	})

	// Standard PAV: merge adjacent blocks while the sequence of block means
	// violates monotonicity. Equal input LRs are pooled into one starting
	// block so ties always share a transformed value.
	blocks := make([]pavBlock, 0, n)
	sizes := make([]int, 0, n)
	for i := 0; i < len(points); {
		j := i
		var sum float64
		for ; j < len(points) && points[j].lr == points[i].lr; j++ {
			sum += float64(points[j].label)
		}
		blocks = append(blocks, pavBlock{sum: sum, count: float64(j - i)})
		sizes = append(sizes, j-i)
		i = j
		for len(blocks) > 1 && blocks[len(blocks)-2].value() >= blocks[len(blocks)-1].value() {
			last := len(blocks) - 1
			blocks[last-1].sum += blocks[last].sum
			blocks[last-1].count += blocks[last].count
			sizes[last-1] += sizes[last]
			blocks = blocks[:last]
			sizes = sizes[:last]
		}
	}

	pav0 = make([]float64, len(lrClass0))
	pav1 = make([]float64, len(lrClass1))
	pos := 0
	for bi, b := range blocks {
		lr := probabilityToLR(b.value())
		for k := 0; k < sizes[bi]; k++ {
			p := points[pos]
			if p.label == 0 {
				pav0[p.idx] = lr
			} else {
				pav1[p.idx] = lr
			}
			pos++
		}
	}
	return pav0, pav1
}

func probabilityToLR(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	return p / (1 - p)
}
