package model

import "fmt"

// ListType is the categorical presentation shape recorded with each trial.
// 1 is a pure list, 2 is a list of consecutively paired repetitions and
// anything larger is an arbitrary presentation.
type ListType int

const (
	ListPure   ListType = 1
	ListPaired ListType = 2
)

// Kind identifies a canonical presentation a model can be cached for.
type Kind int

const (
	KindPure Kind = iota + 1
	KindPaired
)

func (k Kind) String() string {
	switch k {
	case KindPure:
		return "pure"
	case KindPaired:
		return "paired"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ItemCount returns how many distinct items the canonical presentation of
// length listLength holds.
func (k Kind) ItemCount(listLength int) int {
	if k == KindPaired {
		return listLength / 2
	}
	return listLength
}

// Canonical returns the canonical presentation of length listLength.
func (k Kind) Canonical(listLength int) Presentation {
	switch k {
	case KindPure:
		p := make(Presentation, listLength)
		for i := range p {
			p[i] = i
		}
		return p
	case KindPaired:
		half := listLength / 2
		p := make(Presentation, 0, 2*half)
		for i := 0; i < half; i++ {
			p = append(p, i, i)
		}
		return p
	default:
		return nil
	}
}

// Variant says whether a trial can share a cached model or needs its own.
type Variant struct {
	// Kind is zero for ad hoc trials.
	Kind Kind
}

// Adhoc is the variant of trials that need a dedicated model.
var Adhoc = Variant{}

// Cacheable returns the variant of trials sharing the canonical model of k.
func Cacheable(k Kind) Variant { return Variant{Kind: k} }

// IsAdhoc reports whether the trial needs a dedicated model.
func (v Variant) IsAdhoc() bool { return v.Kind == 0 }

func (v Variant) String() string {
	if v.IsAdhoc() {
		return "adhoc"
	}
	return "cacheable(" + v.Kind.String() + ")"
}

// Classify selects the variant for one trial. A pure or paired tag is only
// trusted when the presentation really is the canonical pattern.
func Classify(t ListType, p Presentation, listLength int) Variant {
	var k Kind
	switch t {
	case ListPure:
		k = KindPure
	case ListPaired:
		k = KindPaired
	default:
		return Adhoc
	}
	if !p.Equal(k.Canonical(listLength)) {
		return Adhoc
	}
	return Cacheable(k)
}
