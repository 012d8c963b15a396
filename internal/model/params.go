package model

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// Parameters configures every model built during one corpus evaluation.
type Parameters struct {
	EncodingDriftRate     float64 `json:"encoding_drift_rate" yaml:"encoding_drift_rate"`
	StartDriftRate        float64 `json:"start_drift_rate" yaml:"start_drift_rate"`
	RecallDriftRate       float64 `json:"recall_drift_rate" yaml:"recall_drift_rate"`
	SharedSupport         float64 `json:"shared_support" yaml:"shared_support"`
	ItemSupport           float64 `json:"item_support" yaml:"item_support"`
	LearningRate          float64 `json:"learning_rate" yaml:"learning_rate"`
	PrimacyScale          float64 `json:"primacy_scale" yaml:"primacy_scale"`
	PrimacyDecay          float64 `json:"primacy_decay" yaml:"primacy_decay"`
	StopProbabilityScale  float64 `json:"stop_probability_scale" yaml:"stop_probability_scale"`
	StopProbabilityGrowth float64 `json:"stop_probability_growth" yaml:"stop_probability_growth"`
	ChoiceSensitivity     float64 `json:"choice_sensitivity" yaml:"choice_sensitivity"`
}

// ParameterNames lists every parameter name in canonical order.
var ParameterNames = []string{
	"encoding_drift_rate",
	"start_drift_rate",
	"recall_drift_rate",
	"shared_support",
	"item_support",
	"learning_rate",
	"primacy_scale",
	"primacy_decay",
	"stop_probability_scale",
	"stop_probability_growth",
	"choice_sensitivity",
}

// ValidParameters are the accepted parameter names.
var ValidParameters = func() map[string]bool {
	m := make(map[string]bool, len(ParameterNames))
	for _, n := range ParameterNames {
		m[n] = true
	}
	return m
}()

func (p *Parameters) field(name string) *float64 {
	switch name {
	case "encoding_drift_rate":
		return &p.EncodingDriftRate
	case "start_drift_rate":
		return &p.StartDriftRate
	case "recall_drift_rate":
		return &p.RecallDriftRate
	case "shared_support":
		return &p.SharedSupport
	case "item_support":
		return &p.ItemSupport
	case "learning_rate":
		return &p.LearningRate
	case "primacy_scale":
		return &p.PrimacyScale
	case "primacy_decay":
		return &p.PrimacyDecay
	case "stop_probability_scale":
		return &p.StopProbabilityScale
	case "stop_probability_growth":
		return &p.StopProbabilityGrowth
	case "choice_sensitivity":
		return &p.ChoiceSensitivity
	}
	return nil
}

// Get returns the named parameter.
func (p Parameters) Get(name string) (float64, bool) {
	f := p.field(name)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// Map returns the parameters keyed by name.
func (p Parameters) Map() map[string]float64 {
	m := make(map[string]float64, len(ParameterNames))
	for _, n := range ParameterNames {
		m[n] = *p.field(n)
	}
	return m
}

// ParametersFromMap builds Parameters from a complete name to value mapping.
func ParametersFromMap(values map[string]float64) (Parameters, error) {
	var p Parameters
	if err := CheckNames(keys(values)...); err != nil {
		return p, err
	}
	var missing []string
	for _, n := range ParameterNames {
		v, ok := values[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		*p.field(n) = v
	}
	if len(missing) > 0 {
		return p, goerr.New("missing parameters", goerr.V("names", missing))
	}
	return p, nil
}

// CheckNames fails on the first name that is not a parameter.
func CheckNames(names ...string) error {
	for _, n := range names {
		if !ValidParameters[n] {
			return goerr.New("unknown parameter", goerr.V("name", n))
		}
	}
	return nil
}

// Partition splits parameters into fixed values and an ordered list of free
// names whose values arrive positionally at evaluation time.
type Partition struct {
	Fixed map[string]float64
	Free  []string
}

// Validate checks that every name is known and that fixed and free together
// cover every parameter.
func (pt Partition) Validate() error {
	if err := CheckNames(keys(pt.Fixed)...); err != nil {
		return err
	}
	if err := CheckNames(pt.Free...); err != nil {
		return err
	}
	seen := make(map[string]bool, len(pt.Free))
	for _, n := range pt.Free {
		if seen[n] {
			return goerr.New("duplicate free parameter", goerr.V("name", n))
		}
		seen[n] = true
	}
	var missing []string
	for _, n := range ParameterNames {
		if _, ok := pt.Fixed[n]; !ok && !seen[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return goerr.New("parameters neither fixed nor free", goerr.V("names", missing))
	}
	return nil
}

// ErrLengthMismatch is returned when a parameter vector does not line up with
// the free parameter names.
var ErrLengthMismatch = goerr.New("parameter vector length does not match free parameters")

// Merge overlays x, positionally aligned with Free, on the fixed values.
// Free values win on name collision.
func (pt Partition) Merge(x []float64) (Parameters, error) {
	if len(x) != len(pt.Free) {
		return Parameters{}, goerr.Wrap(ErrLengthMismatch, "merge parameters",
			goerr.V("got", len(x)), goerr.V("want", len(pt.Free)))
	}
	values := make(map[string]float64, len(pt.Fixed)+len(pt.Free))
	for k, v := range pt.Fixed {
		values[k] = v
	}
	for i, n := range pt.Free {
		values[n] = x[i]
	}
	return ParametersFromMap(values)
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
