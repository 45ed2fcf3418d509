package svmstudy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/thalesfsp/svmstudy/svm"
)

// Parameter names of the SVM search space.
const (
	ParamC      = "C"
	ParamKernel = "kernel"
	ParamGamma  = "gamma"
	ParamDegree = "degree"
)

// Params is one sampled configuration: parameter name to value. Values are
// float64 for LogUniform, int for IntRange and string for Categorical.
type Params map[string]any

// Float returns the float64 value of name.
func (p Params) Float(name string) (float64, bool) {
	v, ok := p[name].(float64)
	return v, ok
}

// Int returns the int value of name.
func (p Params) Int(name string) (int, bool) {
	v, ok := p[name].(int)
	return v, ok
}

// Choice returns the categorical value of name.
func (p Params) Choice(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// Has reports whether name was sampled.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns the sampled parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Clone returns a shallow copy; values are immutable scalars.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Format renders the parameters as "name=value" pairs in name order.
func (p Params) Format() string {
	parts := make([]string, 0, len(p))
	for _, name := range p.Names() {
		switch v := p[name].(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%.6g", name, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
	}

	return strings.Join(parts, " ")
}

//////
// Domains.
//////

// Domain describes the values a parameter can take.
type Domain interface {
	// sample draws one value.
	sample(rng *rand.Rand) any

	// encode maps a value into [0, 1]^width for the surrogate model.
	encode(v any) []float64

	// width is the length of encode's output.
	width() int

	validate() error
}

// LogUniform draws uniformly in log space: the exponent is uniform in
// [log Min, log Max] and the value is its exponential.
type LogUniform struct {
	Range ParameterRange[float64]
}

func (d LogUniform) sample(rng *rand.Rand) any {
	lo, hi := math.Log(d.Range.Min), math.Log(d.Range.Max)

	// exp(log(x)) can land one ulp outside the bounds.
	return clamp(math.Exp(lo+rng.Float64()*(hi-lo)), d.Range.Min, d.Range.Max)
}

func (d LogUniform) encode(v any) []float64 {
	f, ok := v.(float64)
	if !ok {
		return []float64{0}
	}

	lo, hi := math.Log(d.Range.Min), math.Log(d.Range.Max)
	if hi == lo {
		return []float64{0}
	}

	return []float64{clamp((math.Log(f)-lo)/(hi-lo), 0, 1)}
}

func (d LogUniform) width() int { return 1 }

func (d LogUniform) validate() error {
	if err := d.Range.validate(); err != nil {
		return err
	}

	if !(d.Range.Min > 0) || math.IsInf(d.Range.Max, 0) {
		return fmt.Errorf("%w: log-uniform bounds must be positive and finite, got [%v, %v]", ErrConfiguration, d.Range.Min, d.Range.Max)
	}

	return nil
}

// IntRange draws uniformly from the integers in [Min, Max].
type IntRange struct {
	Range ParameterRange[int]
}

func (d IntRange) sample(rng *rand.Rand) any {
	return d.Range.Min + rng.IntN(d.Range.Max-d.Range.Min+1)
}

func (d IntRange) encode(v any) []float64 {
	i, ok := v.(int)
	if !ok || d.Range.Max == d.Range.Min {
		return []float64{0}
	}

	return []float64{float64(i-d.Range.Min) / float64(d.Range.Max-d.Range.Min)}
}

func (d IntRange) width() int { return 1 }

func (d IntRange) validate() error {
	return d.Range.validate()
}

// Categorical draws uniformly from a finite set of choices.
type Categorical struct {
	Choices []string
}

func (d Categorical) sample(rng *rand.Rand) any {
	return d.Choices[rng.IntN(len(d.Choices))]
}

func (d Categorical) encode(v any) []float64 {
	out := make([]float64, len(d.Choices))

	if s, ok := v.(string); ok {
		if i := slices.Index(d.Choices, s); i >= 0 {
			out[i] = 1
		}
	}

	return out
}

func (d Categorical) width() int { return len(d.Choices) }

func (d Categorical) validate() error {
	if len(d.Choices) == 0 {
		return fmt.Errorf("%w: categorical domain has no choices", ErrConfiguration)
	}

	return nil
}

//////
// Search space.
//////

// ParamSpec declares one parameter of a search space.
type ParamSpec struct {
	// Name identifies the parameter in Params.
	Name string

	// Domain is the value domain. A nil Domain is a configuration error.
	Domain Domain

	// Active gates conditional parameters on the parameters already sampled
	// in the same trial. Nil means always active.
	Active func(sampled Params) bool
}

// SearchSpace is an ordered list of parameter specs. Specs are sampled in
// order, so an Active predicate may only read parameters declared before it.
type SearchSpace struct {
	Specs []ParamSpec
}

// Validate checks names, domains and ranges.
func (s SearchSpace) Validate() error {
	if len(s.Specs) == 0 {
		return fmt.Errorf("%w: empty search space", ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(s.Specs))

	for _, spec := range s.Specs {
		if spec.Name == "" {
			return fmt.Errorf("%w: parameter with empty name", ErrConfiguration)
		}

		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("%w: duplicate parameter %q", ErrConfiguration, spec.Name)
		}

		seen[spec.Name] = struct{}{}

		if spec.Domain == nil {
			return fmt.Errorf("%w: parameter %q has no domain", ErrConfiguration, spec.Name)
		}

		if err := spec.Domain.validate(); err != nil {
			return fmt.Errorf("parameter %q: %w", spec.Name, err)
		}
	}

	return nil
}

// Sample draws one configuration containing exactly the active parameters.
func (s SearchSpace) Sample(rng *rand.Rand) (Params, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s.sample(rng), nil
}

// sample assumes a validated space.
func (s SearchSpace) sample(rng *rand.Rand) Params {
	params := make(Params, len(s.Specs))

	for _, spec := range s.Specs {
		if spec.Active != nil && !spec.Active(params) {
			continue
		}

		params[spec.Name] = spec.Domain.sample(rng)
	}

	return params
}

// Encode maps a configuration into a fixed-length vector in [0, 1]. Absent
// parameters encode as zeros.
func (s SearchSpace) Encode(p Params) []float64 {
	var out []float64

	for _, spec := range s.Specs {
		v, ok := p[spec.Name]
		if !ok {
			out = append(out, make([]float64, spec.Domain.width())...)
			continue
		}

		out = append(out, spec.Domain.encode(v)...)
	}

	return out
}

// SVMSearchSpace returns the search space of the SVM classifier:
//
//   - C: log-uniform in [1e-3, 1e2]
//   - kernel: one of linear, rbf, poly, sigmoid
//   - gamma: log-uniform in [1e-4, 1e1], only when kernel is not linear
//   - degree: integer in [2, 5], only when kernel is poly
func SVMSearchSpace() SearchSpace {
	kernels := make([]string, len(svm.Kernels))
	for i, k := range svm.Kernels {
		kernels[i] = k.String()
	}

	kernelIs := func(names ...string) func(Params) bool {
		return func(p Params) bool {
			k, _ := p.Choice(ParamKernel)
			return slices.Contains(names, k)
		}
	}

	return SearchSpace{Specs: []ParamSpec{
		{Name: ParamC, Domain: LogUniform{Range: ParameterRange[float64]{Min: 1e-3, Max: 1e2}}},
		{Name: ParamKernel, Domain: Categorical{Choices: kernels}},
		{
			Name:   ParamGamma,
			Domain: LogUniform{Range: ParameterRange[float64]{Min: 1e-4, Max: 1e1}},
			Active: kernelIs(svm.RBF.String(), svm.Poly.String(), svm.Sigmoid.String()),
		},
		{
			Name:   ParamDegree,
			Domain: IntRange{Range: ParameterRange[int]{Min: 2, Max: 5}},
			Active: kernelIs(svm.Poly.String()),
		},
	}}
}
