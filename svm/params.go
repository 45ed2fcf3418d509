package svm

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

//////
// Const, vars, types.
//////

// ErrInvalidParams is returned when a parameter record violates the kernel
// gating rules or holds out-of-domain values.
var ErrInvalidParams = errors.New("svm: invalid parameters")

// Kernel enumerates the supported kernel kinds.
type Kernel int

const (
	// Linear is the plain dot product kernel.
	Linear Kernel = iota

	// RBF is the radial basis function kernel exp(-gamma * |x-y|^2).
	RBF

	// Poly is the polynomial kernel (gamma * <x,y>)^degree.
	Poly

	// Sigmoid is the hyperbolic tangent kernel tanh(gamma * <x,y>).
	Sigmoid
)

// Kernels lists every kernel kind in declaration order.
var Kernels = []Kernel{Linear, RBF, Poly, Sigmoid}

// String returns the lower case name used in search spaces and reports.
func (k Kernel) String() string {
	switch k {
	case Linear:
		return "linear"
	case RBF:
		return "rbf"
	case Poly:
		return "poly"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("kernel(%d)", int(k))
	}
}

// UsesGamma reports whether the kernel needs a kernel coefficient.
func (k Kernel) UsesGamma() bool {
	return k == RBF || k == Poly || k == Sigmoid
}

// UsesDegree reports whether the kernel needs a polynomial degree.
func (k Kernel) UsesDegree() bool {
	return k == Poly
}

// ParseKernel maps a kernel name back to its Kernel value.
func ParseKernel(name string) (Kernel, error) {
	for _, k := range Kernels {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown kernel %q", ErrInvalidParams, name)
}

// Params is the configuration record of a Classifier.
//
// Gamma is set if and only if the kernel uses it, Degree if and only if the
// kernel is Poly. Validate enforces both rules.
type Params struct {
	// C is the cost parameter. Larger values fit the training data harder.
	C float64

	// Kernel selects the kernel function.
	Kernel Kernel

	// Gamma is the kernel coefficient for RBF, Poly and Sigmoid.
	Gamma *float64

	// Degree is the polynomial degree for Poly.
	Degree *int

	// Seed is recorded with the model. The solver is deterministic and draws
	// no randomness, so equal seeds always give equal models.
	Seed int64

	// Probability enables PredictProba.
	Probability bool
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for filling optional fields.
func Int(v int) *int { return &v }

// Validate checks the gating rules and value domains.
func (p Params) Validate() error {
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return fmt.Errorf("%w: C must be positive and finite, got %v", ErrInvalidParams, p.C)
	}

	if p.Kernel < Linear || p.Kernel > Sigmoid {
		return fmt.Errorf("%w: unknown kernel %d", ErrInvalidParams, int(p.Kernel))
	}

	switch {
	case p.Kernel.UsesGamma() && p.Gamma == nil:
		return fmt.Errorf("%w: kernel %s requires gamma", ErrInvalidParams, p.Kernel)
	case !p.Kernel.UsesGamma() && p.Gamma != nil:
		return fmt.Errorf("%w: kernel %s does not take gamma", ErrInvalidParams, p.Kernel)
	case p.Gamma != nil && (!(*p.Gamma > 0) || math.IsInf(*p.Gamma, 0)):
		return fmt.Errorf("%w: gamma must be positive and finite, got %v", ErrInvalidParams, *p.Gamma)
	}

	switch {
	case p.Kernel.UsesDegree() && p.Degree == nil:
		return fmt.Errorf("%w: kernel %s requires degree", ErrInvalidParams, p.Kernel)
	case !p.Kernel.UsesDegree() && p.Degree != nil:
		return fmt.Errorf("%w: kernel %s does not take degree", ErrInvalidParams, p.Kernel)
	case p.Degree != nil && *p.Degree < 1:
		return fmt.Errorf("%w: degree must be positive, got %d", ErrInvalidParams, *p.Degree)
	}

	return nil
}

// String renders the record the way reports print it.
func (p Params) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "kernel=%s C=%.6g", p.Kernel, p.C)

	if p.Gamma != nil {
		fmt.Fprintf(&b, " gamma=%.6g", *p.Gamma)
	}

	if p.Degree != nil {
		fmt.Fprintf(&b, " degree=%d", *p.Degree)
	}

	return b.String()
}
