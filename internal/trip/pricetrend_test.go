package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_QuartileBoundariesAreInclusive(t *testing.T) {
	dist := &PriceDistribution{Route: "MAD-BCN", Min: 40, Q1: 100, Median: 150, Q3: 200, Max: 400}

	cases := []struct {
		price float64
		want  Classification
	}{
		{40, ClassCheap},
		{99, ClassCheap},
		{100, ClassCheap}, // at Q1
		{101, ClassTypical},
		{150, ClassTypical}, // at median
		{199, ClassTypical},
		{200, ClassExpensive}, // at Q3
		{400, ClassExpensive},
	}

	for _, tc := range cases {
		eval := Evaluate(testWeekend, tc.price, dist)
		assert.Equal(t, tc.want, eval.Classification, "price %.0f", tc.price)
		assert.Equal(t, tc.price, eval.ObservedPrice)
	}
}

func TestEvaluate_AbsentDistributionIsUnknown(t *testing.T) {
	eval := Evaluate(testWeekend, 150, nil)
	assert.Equal(t, ClassUnknown, eval.Classification)
	assert.NotEqual(t, ClassTypical, eval.Classification)
	assert.Equal(t, testWeekend, eval.Weekend)
}
