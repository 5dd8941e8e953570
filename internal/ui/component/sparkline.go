// internal/ui/component/sparkline.go
package component

import (
	"strings"

	"github.com/rovshanmuradov/dex2k/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line price trend.
type Sparkline struct {
	data  []float64
	width int
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{width: width}
}

// SetData keeps the last width points of data.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	if len(data) > s.width {
		data = data[len(data)-s.width:]
	}
	s.data = append(s.data[:0], data...)
	return s
}

// Len returns the number of points held.
func (s *Sparkline) Len() int {
	return len(s.data)
}

// View renders the sparkline colored by the overall direction.
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return style.Muted().Render(strings.Repeat("·", s.width))
	}
	return style.Change(s.ChangePercent()).Render(s.blocks())
}

func (s *Sparkline) blocks() string {
	lo, hi := s.data[0], s.data[0]
	for _, v := range s.data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return strings.Repeat(string(sparkChars[3]), len(s.data))
	}

	var b strings.Builder
	for _, v := range s.data {
		idx := int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// ChangePercent returns the percentage change from the first to the last
// point.
func (s *Sparkline) ChangePercent() float64 {
	if len(s.data) < 2 || s.data[0] == 0 {
		return 0
	}
	first, last := s.data[0], s.data[len(s.data)-1]
	return (last - first) / first * 100
}
