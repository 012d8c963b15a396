// Package cmr implements the context maintenance and retrieval model of free
// recall used to score fitting parameters.
//
// Items are one-hot features. The context layer has one unit per item plus a
// start-of-list unit (index 0) and an end unit (index itemCount+1). Encoding
// drifts context toward each studied item and strengthens item to context
// (M_fc) and context to item (M_cf) associations; recall drifts context toward
// the recalled item's associated context.
package cmr

import (
	"math"
	"math/rand"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rcliao/recall-fit/internal/model"
)

// Model is one memory built from one studied list. It is not safe for
// concurrent use.
type Model struct {
	params     model.Parameters
	itemCount  int
	listLength int

	mfc *mat.Dense // itemCount x itemCount+2
	mcf *mat.Dense // itemCount+2 x itemCount

	context      []float64
	preretrieval []float64
	encoded      int

	phase    Phase
	recalled []int
	retained []bool
}

// New builds an unstudied model for itemCount distinct items presented in
// lists of listLength positions.
func New(itemCount, listLength int, p model.Parameters) (*Model, error) {
	if itemCount <= 0 {
		return nil, goerr.New("item count must be positive", goerr.V("item_count", itemCount))
	}
	if listLength <= 0 {
		return nil, goerr.New("list length must be positive", goerr.V("list_length", listLength))
	}

	units := itemCount + 2
	mfc := mat.NewDense(itemCount, units, nil)
	for i := 0; i < itemCount; i++ {
		mfc.Set(i, i+1, 1-p.LearningRate)
	}
	mcf := mat.NewDense(units, itemCount, nil)
	for j := 1; j <= itemCount; j++ {
		for i := 0; i < itemCount; i++ {
			if i == j-1 {
				mcf.Set(j, i, p.ItemSupport)
			} else {
				mcf.Set(j, i, p.SharedSupport)
			}
		}
	}

	m := &Model{
		params:     p,
		itemCount:  itemCount,
		listLength: listLength,
		mfc:        mfc,
		mcf:        mcf,
		context:    make([]float64, units),
		retained:   make([]bool, itemCount),
	}
	m.context[0] = 1
	m.preretrieval = append([]float64(nil), m.context...)
	return m, nil
}

// ItemCount returns the number of distinct items the model can recall.
func (m *Model) ItemCount() int { return m.itemCount }

// Phase returns the current recall phase.
func (m *Model) Phase() Phase { return m.phase }

// Context returns a copy of the current context vector.
func (m *Model) Context() []float64 {
	return append([]float64(nil), m.context...)
}

// Experience studies the presentation in order. It can be called again to
// extend the studied list as long as the model is not mid recall.
func (m *Model) Experience(p model.Presentation) error {
	if m.phase == PhaseRecalling {
		return goerr.New("cannot encode while recalling", goerr.V("phase", m.phase.String()))
	}
	for pos, id := range p {
		if id < 0 || id >= m.itemCount {
			return goerr.New("item identity out of range",
				goerr.V("position", pos), goerr.V("identity", id), goerr.V("item_count", m.itemCount))
		}
	}

	feature := mat.NewVecDense(m.itemCount, nil)
	for _, id := range p {
		m.drift(m.params.EncodingDriftRate, m.mfc.RawRowView(id))

		floats.AddScaled(m.mfc.RawRowView(id), m.params.LearningRate, m.context)

		feature.Zero()
		feature.SetVec(id, 1)
		ctx := mat.NewVecDense(len(m.context), m.context)
		m.mcf.RankOne(m.mcf, m.primacy(m.encoded), ctx, feature)
		m.encoded++
	}

	m.preretrieval = append(m.preretrieval[:0], m.context...)
	m.phase = PhaseEncoded
	return nil
}

// BeginRecall drifts context toward the start of the list and enters the
// recall phase.
func (m *Model) BeginRecall() error {
	if m.phase == PhaseRecalling {
		return goerr.New("recall already in progress")
	}
	start := make([]float64, len(m.context))
	start[0] = 1
	m.drift(m.params.StartDriftRate, start)
	m.phase = PhaseRecalling
	return nil
}

// ForceRecall advances recall by the given choice. Stop ends recall and
// restores the pre-recall state so the model can be reused.
func (m *Model) ForceRecall(r model.Recall) error {
	if m.phase != PhaseRecalling {
		return goerr.New("model is not recalling", goerr.V("phase", m.phase.String()))
	}
	if r.IsStop() {
		m.reset()
		return nil
	}
	id := r.Identity()
	if id >= m.itemCount {
		return goerr.New("item identity out of range", goerr.V("identity", id), goerr.V("item_count", m.itemCount))
	}
	m.recalled = append(m.recalled, id)
	m.retained[id] = true
	m.drift(m.params.RecallDriftRate, m.mfc.RawRowView(id))
	return nil
}

// Outcomes returns the probability of stopping and of recalling each item
// given the current context. Items already recalled have probability 0.
func (m *Model) Outcomes() model.Distribution {
	d := model.Distribution{Items: make([]float64, m.itemCount)}

	// A capped stop leaves no mass for items, so any further observed recall
	// scores probability 0 and the corpus likelihood becomes +Inf.
	d.Stop = math.Min(1, m.params.StopProbabilityScale*math.Exp(float64(len(m.recalled))*m.params.StopProbabilityGrowth))
	if d.Stop >= 1 {
		return d
	}

	var act mat.VecDense
	act.MulVec(m.mcf.T(), mat.NewVecDense(len(m.context), m.context))
	for i := range d.Items {
		a := act.AtVec(i)
		if m.retained[i] || a <= 0 {
			continue
		}
		d.Items[i] = math.Pow(a, m.params.ChoiceSensitivity)
	}

	total := floats.Sum(d.Items)
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		for i := range d.Items {
			d.Items[i] = 0
		}
		d.Stop = 1
		return d
	}
	floats.Scale((1-d.Stop)/total, d.Items)
	return d
}

// FreeRecall lets the model recall until it stops or runs out of items and
// returns the recalled identities in order. The model ends in PhaseEncoded.
func (m *Model) FreeRecall(rng *rand.Rand) ([]int, error) {
	if err := m.BeginRecall(); err != nil {
		return nil, err
	}
	weights := make([]float64, m.itemCount+1)
	for len(m.recalled) < m.itemCount {
		d := m.Outcomes()
		weights[0] = d.Stop
		copy(weights[1:], d.Items)
		choice := sample(rng, weights)
		if choice == 0 {
			break
		}
		if err := m.ForceRecall(model.Item(choice - 1)); err != nil {
			return nil, err
		}
	}
	out := append([]int(nil), m.recalled...)
	if err := m.ForceRecall(model.Stop); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) reset() {
	m.context = append(m.context[:0], m.preretrieval...)
	for _, id := range m.recalled {
		m.retained[id] = false
	}
	m.recalled = m.recalled[:0]
	m.phase = PhaseEncoded
}

// drift moves context toward the normalised input while keeping it unit
// length.
func (m *Model) drift(rate float64, input []float64) {
	in := append([]float64(nil), input...)
	norm := floats.Norm(in, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, in)

	dot := floats.Dot(m.context, in)
	rho := math.Sqrt(1+rate*rate*(dot*dot-1)) - rate*dot
	floats.Scale(rho, m.context)
	floats.AddScaled(m.context, rate, in)
}

func (m *Model) primacy(position int) float64 {
	return m.params.PrimacyScale*math.Exp(-m.params.PrimacyDecay*float64(position)) + 1
}

// sample draws an index with probability proportional to its weight.
func sample(rng *rand.Rand, weights []float64) int {
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)
	total := cum[len(cum)-1]
	if total <= 0 {
		return 0
	}
	u := rng.Float64() * total
	for i, c := range cum {
		if u < c {
			return i
		}
	}
	return len(weights) - 1
}
