package trip

// Evaluate classifies an observed price against the route's historical
// quartiles: cheap at or below Q1, expensive at or above Q3, typical in
// between. When no distribution exists for the route the classification is
// unknown, which consumers must render distinctly from typical.
func Evaluate(weekend Weekend, observedPrice float64, dist *PriceDistribution) PriceEvaluation {
	eval := PriceEvaluation{
		Weekend:        weekend,
		ObservedPrice:  observedPrice,
		Classification: ClassUnknown,
	}
	if dist == nil {
		return eval
	}

	switch {
	case observedPrice <= dist.Q1:
		eval.Classification = ClassCheap
	case observedPrice >= dist.Q3:
		eval.Classification = ClassExpensive
	default:
		eval.Classification = ClassTypical
	}
	return eval
}
