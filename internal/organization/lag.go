// Package organization computes summary statistics of recall corpora.
package organization

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/model"
)

// LagBins labels the bins of RecallByLag: items presented once, then items
// repeated with 0, 1-2, 3-5 and 6 or more intervening positions.
var LagBins = []string{"once", "0", "1-2", "3-5", "6+"}

// lagBin maps the number of positions between two presentations to a bin.
func lagBin(lag int) int {
	switch {
	case lag < 0:
		return 0
	case lag == 0:
		return 1
	case lag <= 2:
		return 2
	case lag <= 5:
		return 3
	default:
		return 4
	}
}

// Corpus rows hold recalled item identities shifted up by one; 0 is padding.
type Corpus [][]int

// RecallByLag measures recall probability as a function of the spacing between
// an item's first two presentations. Corpus row trial*simulations+s belongs to
// presentation trial. The result rows are presentation counts, retrieval
// counts and retrieval probability per bin.
func RecallByLag(presentations []model.Presentation, corpus Corpus, simulations int) ([][]float64, error) {
	if simulations <= 0 {
		return nil, goerr.New("simulations must be positive", goerr.V("simulations", simulations))
	}
	if len(corpus) != len(presentations)*simulations {
		return nil, goerr.New("corpus does not match presentations",
			goerr.V("rows", len(corpus)),
			goerr.V("presentations", len(presentations)),
			goerr.V("simulations", simulations))
	}

	presented := make([]float64, len(LagBins))
	retrieved := make([]float64, len(LagBins))

	for trial, p := range presentations {
		bins := itemBins(p)
		for s := 0; s < simulations; s++ {
			row := corpus[trial*simulations+s]
			recalled := make(map[int]bool, len(row))
			for _, v := range row {
				if v > 0 {
					recalled[v-1] = true
				}
			}
			for id, bin := range bins {
				presented[bin]++
				if recalled[id] {
					retrieved[bin]++
				}
			}
		}
	}

	probability := make([]float64, len(LagBins))
	for i := range probability {
		if presented[i] > 0 {
			probability[i] = retrieved[i] / presented[i]
		}
	}
	return [][]float64{presented, retrieved, probability}, nil
}

// itemBins returns the lag bin of every distinct item in p.
func itemBins(p model.Presentation) map[int]int {
	first := make(map[int]int, len(p))
	lag := make(map[int]int, len(p))
	for pos, id := range p {
		at, seen := first[id]
		if !seen {
			first[id] = pos
			lag[id] = -1
			continue
		}
		if lag[id] < 0 {
			lag[id] = pos - at - 1
		}
	}
	bins := make(map[int]int, len(lag))
	for id, l := range lag {
		bins[id] = lagBin(l)
	}
	return bins
}
