package pitch

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how a frame's candidates collapse into one value.
type Mode int

const (
	// MaxPitch keeps the highest candidate pitch in the frame.
	MaxPitch Mode = iota

	// Strongest keeps the pitch of the candidate with the largest strength.
	Strongest
)

func (m Mode) String() string {
	switch m {
	case MaxPitch:
		return "max-pitch"
	case Strongest:
		return "strongest"
	default:
		return "unknown"
	}
}

// ParseMode accepts "max", "max-pitch" or "strongest".
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "max", "max-pitch":
		return MaxPitch, nil
	case "strongest":
		return Strongest, nil
	}
	return MaxPitch, fmt.Errorf("unknown reducer %q", name)
}

// Reduce collapses m into one pitch per frame using MaxPitch.
func Reduce(m Matrix) Sequence {
	return ReduceWith(m, MaxPitch)
}

// ReduceWith collapses m into one pitch per frame. The result always has
// len(m) entries; frames without usable candidates become Unvoiced.
// Non-finite candidates are ignored.
func ReduceWith(m Matrix, mode Mode) Sequence {
	out := make(Sequence, len(m))
	for i, frame := range m {
		out[i] = reduceFrame(frame, mode)
	}
	return out
}

func reduceFrame(frame Frame, mode Mode) float64 {
	value := Unvoiced
	bestStrength := math.Inf(-1)
	found := false

	for _, c := range frame {
		if !finite(c.Pitch) || !finite(c.Strength) {
			continue
		}
		switch mode {
		case Strongest:
			if !found || c.Strength > bestStrength {
				bestStrength = c.Strength
				value = c.Pitch
			}
		default:
			if !found || c.Pitch > value {
				value = c.Pitch
			}
		}
		found = true
	}
	return value
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
