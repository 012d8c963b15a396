package model

import "github.com/m-mizutani/goerr/v2"

// Dataset is a free-recall corpus: one trial, presentation and list type per
// row, with the canonical list length shared by cacheable trials. Trials may
// be nil when the corpus is only simulated.
type Dataset struct {
	Trials        []Trial        `json:"trials"`
	Presentations []Presentation `json:"presentations"`
	ListTypes     []ListType     `json:"list_types"`
	ListLength    int            `json:"list_length"`
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Presentations) }

// Validate checks that the per-trial slices line up.
func (d Dataset) Validate() error {
	if d.ListLength <= 0 {
		return goerr.New("list length must be positive", goerr.V("list_length", d.ListLength))
	}
	if len(d.ListTypes) != len(d.Presentations) || (d.Trials != nil && len(d.Trials) != len(d.Presentations)) {
		return goerr.New("dataset rows disagree",
			goerr.V("trials", len(d.Trials)),
			goerr.V("presentations", len(d.Presentations)),
			goerr.V("list_types", len(d.ListTypes)))
	}
	for i, p := range d.Presentations {
		if len(p) == 0 {
			return goerr.New("empty presentation", goerr.V("trial", i))
		}
		for _, id := range p {
			if id < 0 {
				return goerr.New("negative item identity", goerr.V("trial", i), goerr.V("identity", id))
			}
		}
	}
	return nil
}

// Variant classifies trial i.
func (d Dataset) Variant(i int) Variant {
	return Classify(d.ListTypes[i], d.Presentations[i], d.ListLength)
}
