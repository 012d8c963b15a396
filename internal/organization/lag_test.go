package organization_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/recall-fit/internal/model"
	"github.com/rcliao/recall-fit/internal/organization"
)

func TestRecallByLag(t *testing.T) {
	// item 0 and 3 once, item 1 massed, item 2 spaced by one position
	corpus := organization.Corpus{
		{2, 3, 0, 0, 0, 0},
		{1, 0, 0, 0, 0, 0},
	}

	rows, err := organization.RecallByLag([]model.Presentation{{0, 1, 1, 2, 3, 2}}, corpus, 2)
	gt.NoError(t, err)
	gt.A(t, rows).Length(3)

	presented, retrieved, prob := rows[0], rows[1], rows[2]
	// once: items 0 and 3, twice each across two simulations
	gt.V(t, presented[0]).Equal(4.0)
	gt.V(t, retrieved[0]).Equal(1.0)
	gt.V(t, prob[0]).Equal(0.25)

	// lag 0: item 1
	gt.V(t, presented[1]).Equal(2.0)
	gt.V(t, prob[1]).Equal(0.5)

	// lag 1-2: item 2 (positions 3 and 5)
	gt.V(t, presented[2]).Equal(2.0)
	gt.V(t, prob[2]).Equal(0.5)

	// unused bins stay at zero
	gt.V(t, presented[4]).Equal(0.0)
	gt.V(t, prob[4]).Equal(0.0)
}

func TestRecallByLagProbabilityBounds(t *testing.T) {
	p := []model.Presentation{{0, 0, 1, 1}, {0, 1, 2, 3}}
	corpus := organization.Corpus{{1, 2, 1}, {2}, {4, 3, 2, 1}, {}}

	rows, err := organization.RecallByLag(p, corpus, 2)
	gt.NoError(t, err)
	for _, v := range rows[2] {
		gt.Number(t, v).GreaterOrEqual(0)
		gt.Number(t, v).LessOrEqual(1)
	}
}

func TestRecallByLagShapeErrors(t *testing.T) {
	p := []model.Presentation{{0, 1}}
	_, err := organization.RecallByLag(p, organization.Corpus{{1}}, 2)
	gt.Error(t, err)
	_, err = organization.RecallByLag(p, nil, 0)
	gt.Error(t, err)
}
