// Package theme holds the light and dark palettes and the interpolation used
// to animate a switch between them.
package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode is the user's theme preference.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLight, ModeDark, ModeSystem:
		return m, nil
	default:
		return "", fmt.Errorf("unknown theme mode %q", s)
	}
}

// Palette is a set of colours in #rrggbb form.
type Palette struct {
	Mode       Mode   `json:"mode"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Border     string `json:"border"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Success    string `json:"success"`
	Danger     string `json:"danger"`
	Warning    string `json:"warning"`
	Info       string `json:"info"`
}

var Light = Palette{
	Mode:       ModeLight,
	Background: "#f8f9fa",
	Text:       "#212529",
	Card:       "#ffffff",
	Border:     "#dee2e6",
	Primary:    "#0d6efd",
	Secondary:  "#6c757d",
	Success:    "#198754",
	Danger:     "#dc3545",
	Warning:    "#ffc107",
	Info:       "#0dcaf0",
}

var Dark = Palette{
	Mode:       ModeDark,
	Background: "#212529",
	Text:       "#f8f9fa",
	Card:       "#343a40",
	Border:     "#495057",
	Primary:    "#0d6efd",
	Secondary:  "#6c757d",
	Success:    "#198754",
	Danger:     "#dc3545",
	Warning:    "#ffc107",
	Info:       "#0dcaf0",
}

// Resolve picks the palette for mode; system follows the device.
func Resolve(mode Mode, deviceDark bool) Palette {
	switch mode {
	case ModeDark:
		return Dark
	case ModeLight:
		return Light
	default:
		if deviceDark {
			return Dark
		}
		return Light
	}
}

// Interpolate blends every colour of from towards to; t is clamped to [0,1].
// The resulting Mode is from's below 0.5 and to's from 0.5 on.
func Interpolate(from, to Palette, t float64) Palette {
	t = math.Max(0, math.Min(1, t))

	out := Palette{Mode: from.Mode}
	if t >= 0.5 {
		out.Mode = to.Mode
	}
	out.Background = lerpHex(from.Background, to.Background, t)
	out.Text = lerpHex(from.Text, to.Text, t)
	out.Card = lerpHex(from.Card, to.Card, t)
	out.Border = lerpHex(from.Border, to.Border, t)
	out.Primary = lerpHex(from.Primary, to.Primary, t)
	out.Secondary = lerpHex(from.Secondary, to.Secondary, t)
	out.Success = lerpHex(from.Success, to.Success, t)
	out.Danger = lerpHex(from.Danger, to.Danger, t)
	out.Warning = lerpHex(from.Warning, to.Warning, t)
	out.Info = lerpHex(from.Info, to.Info, t)
	return out
}

// Transition returns frames+1 palettes from from to to inclusive.
func Transition(from, to Palette, frames int) []Palette {
	if frames < 1 {
		return []Palette{to}
	}
	out := make([]Palette, 0, frames+1)
	for i := 0; i <= frames; i++ {
		out = append(out, Interpolate(from, to, float64(i)/float64(frames)))
	}
	return out
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab, okA := parseHex(a)
	br, bg, bb, okB := parseHex(b)
	if !okA || !okB {
		if t < 0.5 {
			return a
		}
		return b
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br, t), lerp(ag, bg, t), lerp(ab, bb, t))
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
