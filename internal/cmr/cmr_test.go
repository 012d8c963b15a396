package cmr_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/recall-fit/internal/cmr"
	"github.com/rcliao/recall-fit/internal/model"
)

func testParams() model.Parameters {
	return model.Parameters{
		EncodingDriftRate:     0.8,
		StartDriftRate:        0.3,
		RecallDriftRate:       0.8,
		SharedSupport:         0.05,
		ItemSupport:           0.5,
		LearningRate:          0.4,
		PrimacyScale:          2,
		PrimacyDecay:          0.5,
		StopProbabilityScale:  0.01,
		StopProbabilityGrowth: 0.3,
		ChoiceSensitivity:     2,
	}
}

func newEncoded(t *testing.T, p model.Presentation) *cmr.Model {
	t.Helper()
	m, err := cmr.New(p.ItemCount(), len(p), testParams())
	gt.NoError(t, err)
	gt.NoError(t, m.Experience(p))
	return m
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := cmr.New(0, 4, testParams())
	gt.Error(t, err)
	_, err = cmr.New(4, 0, testParams())
	gt.Error(t, err)
}

func TestPhases(t *testing.T) {
	m, err := cmr.New(3, 3, testParams())
	gt.NoError(t, err)
	gt.V(t, m.Phase()).Equal(cmr.PhaseEncoding)

	gt.NoError(t, m.Experience(model.Presentation{0, 1, 2}))
	gt.V(t, m.Phase()).Equal(cmr.PhaseEncoded)

	// Forced recall outside the recall phase is a misuse.
	gt.Error(t, m.ForceRecall(model.Item(0)))

	gt.NoError(t, m.BeginRecall())
	gt.V(t, m.Phase()).Equal(cmr.PhaseRecalling)
	gt.Error(t, m.BeginRecall())
	gt.Error(t, m.Experience(model.Presentation{0}))

	gt.NoError(t, m.ForceRecall(model.Item(1)))
	gt.NoError(t, m.ForceRecall(model.Stop))
	gt.V(t, m.Phase()).Equal(cmr.PhaseEncoded)
}

func TestExperienceRejectsUnknownItem(t *testing.T) {
	m, err := cmr.New(2, 2, testParams())
	gt.NoError(t, err)
	gt.Error(t, m.Experience(model.Presentation{0, 2}))
}

func TestContextStaysUnitLength(t *testing.T) {
	m := newEncoded(t, model.Presentation{0, 1, 2, 3, 4})
	norm := func() float64 {
		var s float64
		for _, v := range m.Context() {
			s += v * v
		}
		return math.Sqrt(s)
	}
	gt.Number(t, math.Abs(norm()-1)).Less(1e-9)

	gt.NoError(t, m.BeginRecall())
	gt.NoError(t, m.ForceRecall(model.Item(2)))
	gt.Number(t, math.Abs(norm()-1)).Less(1e-9)
}

func TestOutcomesSumToOne(t *testing.T) {
	m := newEncoded(t, model.Presentation{0, 1, 2, 3})
	gt.NoError(t, m.BeginRecall())

	for _, id := range []int{0, 1} {
		d := m.Outcomes()
		sum := d.Stop
		for _, p := range d.Items {
			gt.Number(t, p).GreaterOrEqual(0)
			sum += p
		}
		gt.Number(t, math.Abs(sum-1)).Less(1e-9)
		gt.NoError(t, m.ForceRecall(model.Item(id)))
	}

	d := m.Outcomes()
	gt.V(t, d.P(model.Item(0))).Equal(0.0)
	gt.V(t, d.P(model.Item(1))).Equal(0.0)
	gt.Number(t, d.P(model.Item(2))).Greater(0)
}

func TestStopRestoresPreRecallState(t *testing.T) {
	m := newEncoded(t, model.Presentation{0, 1, 2, 3})
	before := m.Context()

	gt.NoError(t, m.BeginRecall())
	first := m.Outcomes()
	gt.NoError(t, m.ForceRecall(model.Item(3)))
	gt.NoError(t, m.ForceRecall(model.Item(0)))
	gt.NoError(t, m.ForceRecall(model.Stop))

	gt.A(t, m.Context()).Equal(before)

	gt.NoError(t, m.BeginRecall())
	again := m.Outcomes()
	gt.V(t, again.Stop).Equal(first.Stop)
	gt.A(t, again.Items).Equal(first.Items)
}

func TestStopCertainWhenListExhausted(t *testing.T) {
	m := newEncoded(t, model.Presentation{0, 1})
	gt.NoError(t, m.BeginRecall())
	gt.NoError(t, m.ForceRecall(model.Item(0)))
	gt.NoError(t, m.ForceRecall(model.Item(1)))
	gt.V(t, m.Outcomes().Stop).Equal(1.0)
}

func TestFreeRecall(t *testing.T) {
	m := newEncoded(t, model.Presentation{0, 0, 1, 1, 2, 2})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		got, err := m.FreeRecall(rng)
		gt.NoError(t, err)
		gt.Number(t, len(got)).LessOrEqual(3)

		seen := map[int]bool{}
		for _, id := range got {
			gt.False(t, seen[id])
			gt.Number(t, id).Less(3)
			seen[id] = true
		}
		gt.V(t, m.Phase()).Equal(cmr.PhaseEncoded)
	}
}

func TestFreeRecallDeterministicWithSeed(t *testing.T) {
	p := model.Presentation{0, 1, 2, 3, 4, 5}
	a := newEncoded(t, p)
	b := newEncoded(t, p)
	ra := rand.New(rand.NewSource(42))
	rb := rand.New(rand.NewSource(42))

	for i := 0; i < 5; i++ {
		x, err := a.FreeRecall(ra)
		gt.NoError(t, err)
		y, err := b.FreeRecall(rb)
		gt.NoError(t, err)
		gt.A(t, x).Equal(y)
	}
}

func TestOutcomesCappedStop(t *testing.T) {
	p := testParams()
	p.StopProbabilityScale = 1.5
	m, err := cmr.New(3, 3, p)
	gt.NoError(t, err)
	gt.NoError(t, m.Experience(model.Presentation{0, 1, 2}))
	gt.NoError(t, m.BeginRecall())

	d := m.Outcomes()
	gt.V(t, d.Stop).Equal(1.0)
	for _, v := range d.Items {
		gt.V(t, v).Equal(0.0)
	}
}
