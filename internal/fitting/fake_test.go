package fitting_test

import (
	"math/rand"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/fitting"
	"github.com/rcliao/recall-fit/internal/model"
)

// fakeModel spreads the non-stop mass uniformly over unrecalled items and
// logs every call.
type fakeModel struct {
	items     int
	stop      float64
	recalling bool
	recalled  map[int]bool
	calls     []string
	free      [][]int
	freeNext  int
	params    model.Parameters
	studied   []model.Presentation
}

func newFake(items int, stop float64) *fakeModel {
	return &fakeModel{items: items, stop: stop, recalled: map[int]bool{}}
}

func (f *fakeModel) Experience(p model.Presentation) error {
	f.studied = append(f.studied, p)
	f.calls = append(f.calls, "experience")
	return nil
}

func (f *fakeModel) BeginRecall() error {
	if f.recalling {
		return goerr.New("already recalling")
	}
	f.recalling = true
	f.calls = append(f.calls, "begin")
	return nil
}

func (f *fakeModel) ForceRecall(r model.Recall) error {
	if !f.recalling {
		return goerr.New("not recalling")
	}
	f.calls = append(f.calls, "force:"+r.String())
	if r.IsStop() {
		f.recalling = false
		f.recalled = map[int]bool{}
		return nil
	}
	f.recalled[r.Identity()] = true
	return nil
}

func (f *fakeModel) Outcomes() model.Distribution {
	f.calls = append(f.calls, "outcomes")
	d := model.Distribution{Stop: f.stop, Items: make([]float64, f.items)}
	left := f.items - len(f.recalled)
	if left == 0 {
		d.Stop = 1
		return d
	}
	for i := range d.Items {
		if !f.recalled[i] {
			d.Items[i] = (1 - f.stop) / float64(left)
		}
	}
	return d
}

func (f *fakeModel) FreeRecall(_ *rand.Rand) ([]int, error) {
	f.calls = append(f.calls, "free")
	if len(f.free) == 0 {
		return nil, nil
	}
	out := f.free[f.freeNext%len(f.free)]
	f.freeNext++
	return out, nil
}

func (f *fakeModel) trace() string { return strings.Join(f.calls, " ") }

// fakeBuilder hands out fake models and remembers what it built.
type fakeBuilder struct {
	stop   float64
	free   [][]int
	built  []*fakeModel
	counts []int
}

func (b *fakeBuilder) build(itemCount, listLength int, p model.Parameters) (fitting.Model, error) {
	m := newFake(itemCount, b.stop)
	m.free = b.free
	m.params = p
	b.built = append(b.built, m)
	b.counts = append(b.counts, itemCount)
	return m, nil
}

func baseFixed() map[string]float64 {
	return map[string]float64{
		"encoding_drift_rate":     0.5,
		"start_drift_rate":        0.2,
		"recall_drift_rate":       0.8,
		"shared_support":          0.05,
		"item_support":            0.4,
		"learning_rate":           0.3,
		"primacy_scale":           1.5,
		"primacy_decay":           0.4,
		"stop_probability_scale":  0.02,
		"stop_probability_growth": 0.3,
		"choice_sensitivity":      1.5,
	}
}

func baseParams() model.Parameters {
	p, err := model.ParametersFromMap(baseFixed())
	if err != nil {
		panic(err)
	}
	return p
}

func identity(n int) model.Presentation {
	return model.KindPure.Canonical(n)
}
