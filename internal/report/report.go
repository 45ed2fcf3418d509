// Package report renders an evaluation report for the console.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thalesfsp/svmstudy"
)

// Renderer writes colored report sections.
type Renderer struct {
	w io.Writer

	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	blue   func(a ...interface{}) string
}

// NewRenderer returns a renderer writing to w. Colors follow color.NoColor.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:      w,
		green:  color.New(color.FgGreen).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
		blue:   color.New(color.FgBlue).SprintFunc(),
	}
}

// Render writes every section of r.
func Render(w io.Writer, r svmstudy.Report) {
	p := NewRenderer(w)

	p.Search(r)
	p.Folds(r.CrossValidation)
	p.Summary(r.CrossValidation)
	p.Intervals(r.Intervals)
}

// Search writes the search outcome and the best configuration.
func (p *Renderer) Search(r svmstudy.Report) {
	fmt.Fprintln(p.w, p.blue("\nHyperparameter search"))
	fmt.Fprintln(p.w, strings.Repeat("═", 60))

	fmt.Fprintf(p.w, "Run: %s\n", r.ID)
	fmt.Fprintf(p.w, "Finished trials: %d (complete %d, pruned %d, failed %d)\n",
		len(r.History), r.Complete, r.Pruned, r.Failed)
	fmt.Fprintf(p.w, "Best trial: #%d\n", r.Best.Number)
	fmt.Fprintf(p.w, "Best trial value (validation 1-AUC): %.4f\n", r.Best.Value)
	fmt.Fprintf(p.w, "Corresponding validation AUC: %s\n", p.green(fmt.Sprintf("%.4f", 1-r.Best.Value)))

	fmt.Fprintln(p.w, p.cyan("Best hyperparameters:"))

	for _, name := range r.Best.Params.Names() {
		fmt.Fprintf(p.w, "  %s: %v\n", name, r.Best.Params[name])
	}
}

// Folds writes the metrics of every fold.
func (p *Renderer) Folds(cv svmstudy.CVResult) {
	fmt.Fprintln(p.w, p.blue(fmt.Sprintf("\n%d-fold cross-validation", len(cv.Folds))))
	fmt.Fprintln(p.w, strings.Repeat("═", 60))

	for _, f := range cv.Folds {
		fmt.Fprintf(p.w, "Fold %d/%d (train %d, validation %d)\n", f.Index+1, len(cv.Folds), f.TrainSize, f.ValidationSize)

		if f.Degenerate {
			fmt.Fprintf(p.w, "  %s validation set contains only one class, AUC is N/A\n", p.yellow("!"))
		}

		for _, m := range svmstudy.Metrics {
			fmt.Fprintf(p.w, "  %-10s %s\n", m.Label()+":", p.score(f.Scores[m]))
		}
	}
}

// Summary writes mean and standard deviation per metric.
func (p *Renderer) Summary(cv svmstudy.CVResult) {
	fmt.Fprintln(p.w, p.blue("\nCross-validation results (mean ± standard deviation)"))
	fmt.Fprintln(p.w, strings.Repeat("═", 60))

	for _, m := range svmstudy.Metrics {
		s := cv.Summary[m]
		fmt.Fprintf(p.w, "%-10s %s ± %s (n=%d)\n", m.Label()+":", p.score(s.Mean), s.StdDev, s.N)
	}
}

// Intervals writes the bootstrap confidence interval per metric.
func (p *Renderer) Intervals(cis [svmstudy.NumMetrics]svmstudy.Interval) {
	confidence := cis[svmstudy.Accuracy].Confidence

	fmt.Fprintln(p.w, p.blue(fmt.Sprintf("\n%g%% confidence intervals (bootstrap)", confidence*100)))
	fmt.Fprintln(p.w, strings.Repeat("═", 60))

	for _, m := range svmstudy.Metrics {
		ci := cis[m]
		fmt.Fprintf(p.w, "%-10s (%s, %s)\n", m.Label()+" CI:", p.score(ci.Lower), p.score(ci.Upper))
	}
}

// score highlights undefined values.
func (p *Renderer) score(s svmstudy.Score) string {
	if !s.IsDefined() {
		return p.red(s.String())
	}

	return s.String()
}
