// Package dataset loads recall corpora and fit configurations from disk.
package dataset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/recall-fit/internal/model"
)

// Load reads a JSON corpus with trials, presentations, list_types and
// list_length fields.
func Load(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, goerr.Wrap(err, "open dataset", goerr.V("path", path))
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses and validates a JSON corpus.
func Decode(r io.Reader) (model.Dataset, error) {
	var ds model.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return ds, goerr.Wrap(err, "parse dataset")
	}
	if err := ds.Validate(); err != nil {
		return ds, err
	}
	return ds, nil
}

// FreeParameter is one searched parameter with its starting value and
// inclusive bounds.
type FreeParameter struct {
	Name    string     `yaml:"name" json:"name"`
	Initial float64    `yaml:"initial" json:"initial"`
	Bounds  [2]float64 `yaml:"bounds" json:"bounds"`
}

// In reports whether v lies within the bounds.
func (fp FreeParameter) In(v float64) bool {
	return v >= fp.Bounds[0] && v <= fp.Bounds[1]
}

const (
	ObjectiveLikelihood = "likelihood"
	ObjectiveMSE        = "mse"
)

// Config describes one fit: which objective, the fixed values and the free
// parameters to search over.
type Config struct {
	Objective      string             `yaml:"objective" json:"objective"`
	Fixed          map[string]float64 `yaml:"fixed" json:"fixed"`
	Free           []FreeParameter    `yaml:"free" json:"free"`
	Target         []float64          `yaml:"target,omitempty" json:"target,omitempty"`
	Simulations    int                `yaml:"simulations,omitempty" json:"simulations,omitempty"`
	Seed           int64              `yaml:"seed,omitempty" json:"seed,omitempty"`
	MaxEvaluations int                `yaml:"max_evaluations,omitempty" json:"max_evaluations,omitempty"`
}

// FreeNames returns the free parameter names in order.
func (c Config) FreeNames() []string {
	names := make([]string, len(c.Free))
	for i, fp := range c.Free {
		names[i] = fp.Name
	}
	return names
}

// Partition returns the fixed values and free names of the fit.
func (c Config) Partition() model.Partition {
	return model.Partition{Fixed: c.Fixed, Free: c.FreeNames()}
}

// Initial returns the starting point of the search.
func (c Config) Initial() []float64 {
	x := make([]float64, len(c.Free))
	for i, fp := range c.Free {
		x[i] = fp.Initial
	}
	return x
}

// InBounds reports whether every value of x lies within its bounds.
func (c Config) InBounds(x []float64) bool {
	if len(x) != len(c.Free) {
		return false
	}
	for i, fp := range c.Free {
		if !fp.In(x[i]) {
			return false
		}
	}
	return true
}

// Validate applies defaults and checks the configuration.
func (c *Config) Validate() error {
	if c.Objective == "" {
		c.Objective = ObjectiveLikelihood
	}
	if c.Simulations == 0 {
		c.Simulations = 50
	}
	if c.MaxEvaluations == 0 {
		c.MaxEvaluations = 1000
	}

	switch c.Objective {
	case ObjectiveLikelihood:
	case ObjectiveMSE:
		if len(c.Target) == 0 {
			return goerr.New("mse objective needs a target curve")
		}
	default:
		return goerr.New("unknown objective", goerr.V("objective", c.Objective))
	}

	for _, fp := range c.Free {
		if fp.Bounds[0] > fp.Bounds[1] {
			return goerr.New("inverted bounds", goerr.V("name", fp.Name), goerr.V("bounds", fp.Bounds))
		}
		if !fp.In(fp.Initial) {
			return goerr.New("initial value outside bounds", goerr.V("name", fp.Name), goerr.V("initial", fp.Initial))
		}
	}
	return c.Partition().Validate()
}

// LoadConfig reads a YAML fit configuration.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "read config", goerr.V("path", path))
	}
	return ParseConfig(b)
}

// ParseConfig parses and validates a YAML fit configuration.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, goerr.Wrap(err, "parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
