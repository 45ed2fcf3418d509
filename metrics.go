package svmstudy

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

//////
// Optional scores.
//////

// Score is a metric value that may be undefined, e.g. the AUC of a
// single-class fold. The zero value is undefined.
type Score struct {
	value   float64
	defined bool
}

// Undefined is the undefined score.
var Undefined = Score{}

// Defined wraps v. NaN yields Undefined.
func Defined(v float64) Score {
	if math.IsNaN(v) {
		return Undefined
	}

	return Score{value: v, defined: true}
}

// Value returns the wrapped value and whether it is defined.
func (s Score) Value() (float64, bool) {
	return s.value, s.defined
}

// IsDefined reports whether the score holds a value.
func (s Score) IsDefined() bool {
	return s.defined
}

// Float returns the value, or NaN when undefined.
func (s Score) Float() float64 {
	if !s.defined {
		return math.NaN()
	}

	return s.value
}

// String renders four decimals or "N/A".
func (s Score) String() string {
	if !s.defined {
		return "N/A"
	}

	return fmt.Sprintf("%.4f", s.value)
}

// MarshalJSON encodes undefined scores as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.defined {
		return []byte("null"), nil
	}

	return json.Marshal(s.value)
}

// UnmarshalJSON decodes null as Undefined.
func (s *Score) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	if v == nil {
		*s = Undefined
		return nil
	}

	*s = Defined(*v)

	return nil
}

//////
// Metrics.
//////

// Metric identifies one of the evaluation metrics.
type Metric int

const (
	Accuracy Metric = iota
	AUC
	Precision
	Recall
	F1

	// NumMetrics is the number of metrics.
	NumMetrics = 5
)

// Metrics lists every metric in report order.
var Metrics = [NumMetrics]Metric{Accuracy, AUC, Precision, Recall, F1}

// String returns the machine name of the metric.
func (m Metric) String() string {
	switch m {
	case Accuracy:
		return "accuracy"
	case AUC:
		return "auc"
	case Precision:
		return "precision"
	case Recall:
		return "recall"
	case F1:
		return "f1"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// Label returns the human readable name of the metric.
func (m Metric) Label() string {
	switch m {
	case Accuracy:
		return "Accuracy"
	case AUC:
		return "AUC"
	case Precision:
		return "Precision"
	case Recall:
		return "Recall"
	case F1:
		return "F1-Score"
	default:
		return m.String()
	}
}

// MetricScores holds one score per metric, indexed by Metric.
type MetricScores [NumMetrics]Score

// Get returns the score of m.
func (s MetricScores) Get(m Metric) Score {
	return s[m]
}

// ComputeScores evaluates all metrics for one validation partition. probs are
// positive-class probabilities aligned with labels.
func ComputeScores(labels, predicted []int, probs []float64) MetricScores {
	var out MetricScores

	out[Accuracy] = Defined(AccuracyScore(labels, predicted))
	out[AUC] = ROCAUC(labels, probs)
	out[Precision] = Defined(PrecisionScore(labels, predicted))
	out[Recall] = Defined(RecallScore(labels, predicted))
	out[F1] = Defined(F1Score(labels, predicted))

	return out
}

// confusion counts the binary confusion matrix with 1 as the positive class.
type confusion struct {
	tp, fp, tn, fn int
}

func newConfusion(labels, predicted []int) confusion {
	if len(labels) != len(predicted) {
		panic("svmstudy: labels and predictions have different lengths")
	}

	var c confusion
	for i, y := range labels {
		switch {
		case y == 1 && predicted[i] == 1:
			c.tp++
		case y != 1 && predicted[i] == 1:
			c.fp++
		case y == 1:
			c.fn++
		default:
			c.tn++
		}
	}

	return c
}

// safeDiv returns 0 when the denominator is 0.
func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

// AccuracyScore is the fraction of predictions equal to the label. Empty
// input scores 0.
func AccuracyScore(labels, predicted []int) float64 {
	c := newConfusion(labels, predicted)
	return safeDiv(c.tp+c.tn, len(labels))
}

// PrecisionScore is tp / (tp + fp), 0 when nothing was predicted positive.
func PrecisionScore(labels, predicted []int) float64 {
	c := newConfusion(labels, predicted)
	return safeDiv(c.tp, c.tp+c.fp)
}

// RecallScore is tp / (tp + fn), 0 when there are no positives.
func RecallScore(labels, predicted []int) float64 {
	c := newConfusion(labels, predicted)
	return safeDiv(c.tp, c.tp+c.fn)
}

// F1Score is the harmonic mean of precision and recall, 0 when both are 0.
func F1Score(labels, predicted []int) float64 {
	c := newConfusion(labels, predicted)
	return safeDiv(2*c.tp, 2*c.tp+c.fp+c.fn)
}

// ROCAUC is the area under the ROC curve of probs against labels. It is
// Undefined unless both classes occur in labels, and for NaN scores. Tied
// scores count half.
func ROCAUC(labels []int, probs []float64) Score {
	if len(labels) != len(probs) {
		panic("svmstudy: labels and scores have different lengths")
	}

	if classCount(labels) < 2 || slices.ContainsFunc(probs, math.IsNaN) {
		return Undefined
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] < probs[order[b]]
	})

	y := make([]float64, len(order))
	classes := make([]bool, len(order))

	for i, idx := range order {
		y[i] = probs[idx]
		classes[i] = labels[idx] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)

	return Defined(integrate.Trapezoidal(fpr, tpr))
}

// classCount returns the number of distinct values in labels.
func classCount(labels []int) int {
	seen := make(map[int]struct{}, 2)
	for _, y := range labels {
		seen[y] = struct{}{}
	}

	return len(seen)
}
