package cmr

import "fmt"

// Phase is the recall phase of a model instance.
type Phase int

const (
	// PhaseEncoding is a fresh model that has not studied a list yet.
	PhaseEncoding Phase = iota
	// PhaseEncoded holds a studied list and the pre-recall context.
	PhaseEncoded
	// PhaseRecalling is mid recall; context reflects the recalls so far.
	PhaseRecalling
)

func (p Phase) String() string {
	switch p {
	case PhaseEncoding:
		return "encoding"
	case PhaseEncoded:
		return "encoded"
	case PhaseRecalling:
		return "recalling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
