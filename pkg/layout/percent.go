package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Auto is the height keyword that follows the foreground's aspect ratio.
const Auto = "auto"

// Percent is a percentage of a canvas dimension (50 means half).
type Percent float64

// ParsePercent parses "50%", "50" or " 50 % ".
func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return Percent(v), nil
}

// Of resolves the percentage against a pixel length.
func (p Percent) Of(length int) float64 {
	return float64(p) / 100 * float64(length)
}

func (p Percent) finite() bool {
	return !math.IsNaN(float64(p)) && !math.IsInf(float64(p), 0)
}

// slotSize reports whether p is a usable image slot dimension.
func (p Percent) slotSize() bool {
	return p > 0 && p <= MaxSlotSize
}

// String formats the value as "N%".
func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64) + "%"
}

// MarshalJSON writes the percentage as a "N%" string.
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a string or a bare number.
func (p *Percent) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Percent(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("percentage must be a string or number")
	}
	v, err := ParsePercent(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Dimension is a percentage or the auto keyword.
type Dimension struct {
	Auto  bool
	Value Percent
}

// AutoDimension returns an auto dimension.
func AutoDimension() Dimension { return Dimension{Auto: true} }

// Pct returns a fixed percentage dimension.
func Pct(v float64) Dimension { return Dimension{Value: Percent(v)} }

// String formats the dimension.
func (d Dimension) String() string {
	if d.Auto {
		return Auto
	}
	return d.Value.String()
}

// MarshalJSON writes "auto" or "N%".
func (d Dimension) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "auto", a percentage string or a number.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && strings.EqualFold(strings.TrimSpace(s), Auto) {
		*d = AutoDimension()
		return nil
	}
	var p Percent
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*d = Dimension{Value: p}
	return nil
}
