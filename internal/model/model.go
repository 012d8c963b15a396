// Package model defines the core fitting data types.
package model

import "fmt"

// Recall is one step of a recall sequence: either Stop or an item identity.
// The zero value is Stop.
type Recall struct {
	item int // item identity + 1; 0 means stop
}

// Stop terminates a recall sequence.
var Stop = Recall{}

// Item returns the recall of the item with the given 0-based identity.
func Item(identity int) Recall {
	return Recall{item: identity + 1}
}

// IsStop reports whether r terminates recall.
func (r Recall) IsStop() bool { return r.item == 0 }

// Identity returns the 0-based item identity. It is -1 for Stop.
func (r Recall) Identity() int { return r.item - 1 }

func (r Recall) String() string {
	if r.IsStop() {
		return "stop"
	}
	return fmt.Sprintf("item(%d)", r.Identity())
}

// Trial is one recorded row of recall responses. Values are 1-based study
// positions; 0 is the stop sentinel and may be repeated as padding.
type Trial []int

// Recalls returns the study positions recalled before the first stop sentinel.
func (t Trial) Recalls() []int {
	for i, v := range t {
		if v == 0 {
			return t[:i]
		}
	}
	return t
}

// Presentation maps each study position (0-based) to an item identity.
// Identities may repeat.
type Presentation []int

// ItemCount returns one more than the largest identity presented.
func (p Presentation) ItemCount() int {
	hi := -1
	for _, id := range p {
		if id > hi {
			hi = id
		}
	}
	return hi + 1
}

// Equal reports whether p and q present the same identities in the same order.
func (p Presentation) Equal(q Presentation) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Distribution is a model's probability over the next recall.
type Distribution struct {
	Stop  float64   `json:"stop"`
	Items []float64 `json:"items"`
}

// P returns the probability assigned to r. Identities the distribution does
// not cover have probability 0.
func (d Distribution) P(r Recall) float64 {
	if r.IsStop() {
		return d.Stop
	}
	id := r.Identity()
	if id < 0 || id >= len(d.Items) {
		return 0
	}
	return d.Items[id]
}
