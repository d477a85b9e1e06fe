package ml

// Accuracy returns the fraction of predictions matching the labels.
func Accuracy(predicted, actual []int) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	correct := 0
	for i, p := range predicted {
		if p == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predicted))
}

// PrecisionRecallF1 computes binary classification metrics treating
// positive as the positive class label.
func PrecisionRecallF1(predicted, actual []int, positive int) (precision, recall, f1 float64) {
	var tp, fp, fn float64
	for i, p := range predicted {
		switch {
		case p == positive && actual[i] == positive:
			tp++
		case p == positive && actual[i] != positive:
			fp++
		case p != positive && actual[i] == positive:
			fn++
		}
	}
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// TrainTestSplit splits samples chronologically: the first (1-testSize)
// fraction trains, the remainder tests. Time-ordered data must not be
// shuffled across the boundary.
func TrainTestSplit(x [][]float64, y []int, testSize float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	split := int(float64(len(x)) * (1 - testSize))
	if split < 1 {
		split = 1
	}
	if split >= len(x) {
		split = len(x) - 1
	}
	return x[:split], y[:split], x[split:], y[split:]
}
