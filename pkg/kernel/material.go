package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// Material is an opaque, value-comparable rendering material. Two materials
// with equal fields are the same material for part coalescing.
type Material struct {
	Name    string  `json:"name" yaml:"name"`
	Diffuse string  `json:"diffuse" yaml:"diffuse"` // "#rrggbb"
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// DefaultMaterial is used when a script never names one.
var DefaultMaterial = Material{Name: "default", Diffuse: "#cccccc", Opacity: 1}

// Equal reports structural equality.
func (m Material) Equal(other Material) bool {
	return m == other
}

func (m Material) String() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Diffuse
}

// RGB parses the diffuse color into components in [0, 1].
func (m Material) RGB() (r, g, b float64, err error) {
	s := strings.TrimPrefix(m.Diffuse, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("material %s: invalid diffuse color %q", m, m.Diffuse)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("material %s: invalid diffuse color %q: %w", m, m.Diffuse, err)
	}
	r = float64((n>>16)&0xff) / 255
	g = float64((n>>8)&0xff) / 255
	b = float64(n&0xff) / 255
	return r, g, b, nil
}
