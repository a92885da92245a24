package capture

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fallbacks for colors nothing could resolve.
const (
	FallbackForeground = "rgb(0, 0, 0)"
	FallbackBackground = "rgba(0, 0, 0, 0)"
)

// Longer names first so color-mix( is not read as color(.
var unsupportedColorFuncs = []string{"color-mix", "oklch", "oklab", "color", "lab", "lch", "hwb"}

// FindUnsupportedColors returns the color function calls in value that the
// rasterizer cannot parse, in order of appearance.
func FindUnsupportedColors(value string) []string {
	lower := asciiLower(value)
	var found []string
	for i := 0; i < len(lower); {
		if i > 0 && isIdentByte(lower[i-1]) {
			i++
			continue
		}
		matched := false
		for _, name := range unsupportedColorFuncs {
			if !strings.HasPrefix(lower[i:], name+"(") {
				continue
			}
			end := closingParen(lower, i+len(name))
			if end < 0 {
				return found
			}
			found = append(found, value[i:end+1])
			i = end + 1
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return found
}

// closingParen returns the index of the parenthesis closing the one at open.
func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// IsBackgroundProperty reports whether an unresolvable color in property
// should become transparent rather than black.
func IsBackgroundProperty(property string) bool {
	p := asciiLower(property)
	return strings.HasPrefix(p, "background") || p == "box-shadow" || p == "text-shadow"
}

// FallbackColor returns the replacement for an unresolvable color in property.
func FallbackColor(property string) string {
	if IsBackgroundProperty(property) {
		return FallbackBackground
	}
	return FallbackForeground
}

// RewriteColors replaces every unsupported color in value with its resolved
// form, or with the property's fallback when it has none.
func RewriteColors(property, value string, resolved map[string]string) string {
	for _, token := range FindUnsupportedColors(value) {
		replacement, ok := resolved[token]
		if !ok {
			replacement = FallbackColor(property)
		}
		value = strings.Replace(value, token, replacement, 1)
	}
	return value
}

// ConvertColor converts a CSS color function in a wide-gamut or perceptual
// space to rgb() or rgba(). color-mix() and unknown spaces are not handled.
func ConvertColor(token string) (string, bool) {
	open := strings.IndexByte(token, '(')
	if open <= 0 || !strings.HasSuffix(token, ")") {
		return "", false
	}
	name := asciiLower(strings.TrimSpace(token[:open]))
	args, alpha, ok := parseColorArgs(token[open+1 : len(token)-1])
	if !ok {
		return "", false
	}

	for i, a := range args {
		if a.ident && !(name == "color" && i == 0) {
			return "", false
		}
	}

	var r, g, b float64
	switch name {
	case "oklab":
		if len(args) != 3 {
			return "", false
		}
		r, g, b = oklabToSRGB(args[0].scaled(1), args[1].scaled(0.4), args[2].scaled(0.4))
	case "oklch":
		if len(args) != 3 {
			return "", false
		}
		l, c, h := args[0].scaled(1), args[1].scaled(0.4), args[2].hue()
		r, g, b = oklabToSRGB(polar(l, c, h))
	case "lab":
		if len(args) != 3 {
			return "", false
		}
		r, g, b = labToSRGB(args[0].scaled(100), args[1].scaled(125), args[2].scaled(125))
	case "lch":
		if len(args) != 3 {
			return "", false
		}
		l, c, h := args[0].scaled(100), args[1].scaled(150), args[2].hue()
		r, g, b = labToSRGB(polar(l, c, h))
	case "hwb":
		if len(args) != 3 {
			return "", false
		}
		r, g, b = hwbToSRGB(args[0].hue(), args[1].scaled(100)/100, args[2].scaled(100)/100)
	case "color":
		if len(args) != 4 || !args[0].ident {
			return "", false
		}
		r, g, b, ok = predefinedToSRGB(args[0].raw, args[1].scaled(1), args[2].scaled(1), args[3].scaled(1))
		if !ok {
			return "", false
		}
	default:
		return "", false
	}
	return formatRGB(r, g, b, alpha), true
}

// colorArg is one component of a color function.
type colorArg struct {
	raw     string
	value   float64
	percent bool
	ident   bool
	unit    string
}

// scaled maps a percentage onto [0, full]; plain numbers are returned as is.
func (a colorArg) scaled(full float64) float64 {
	if a.percent {
		return a.value / 100 * full
	}
	return a.value
}

// hue returns the component as degrees.
func (a colorArg) hue() float64 {
	switch a.unit {
	case "rad":
		return a.value * 180 / math.Pi
	case "grad":
		return a.value * 0.9
	case "turn":
		return a.value * 360
	default:
		return a.value
	}
}

func parseColorArgs(body string) ([]colorArg, float64, bool) {
	alpha := 1.0
	if slash := strings.IndexByte(body, '/'); slash >= 0 {
		a, ok := parseColorArg(strings.TrimSpace(body[slash+1:]))
		if !ok || a.ident {
			return nil, 0, false
		}
		alpha = clamp(a.scaled(1), 0, 1)
		body = body[:slash]
	}
	fields := strings.Fields(strings.ReplaceAll(body, ",", " "))
	args := make([]colorArg, 0, len(fields))
	for _, f := range fields {
		a, ok := parseColorArg(f)
		if !ok {
			return nil, 0, false
		}
		args = append(args, a)
	}
	return args, alpha, true
}

func parseColorArg(s string) (colorArg, bool) {
	s = asciiLower(s)
	if s == "none" {
		return colorArg{raw: s}, true
	}
	if s == "" {
		return colorArg{}, false
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return colorArg{raw: s, ident: true}, true
	}
	arg := colorArg{raw: s}
	for _, unit := range []string{"%", "deg", "grad", "rad", "turn"} {
		if strings.HasSuffix(s, unit) {
			arg.unit = unit
			s = strings.TrimSuffix(s, unit)
			break
		}
	}
	arg.percent = arg.unit == "%"
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return colorArg{}, false
	}
	arg.value = v
	return arg, true
}

func polar(l, c, h float64) (float64, float64, float64) {
	rad := h * math.Pi / 180
	return l, c * math.Cos(rad), c * math.Sin(rad)
}

func oklabToSRGB(l, a, b float64) (float64, float64, float64) {
	lp := l + 0.3963377774*a + 0.2158037573*b
	mp := l - 0.1055613458*a - 0.0638541728*b
	sp := l - 0.0894841775*a - 1.2914855480*b
	lc, mc, sc := lp*lp*lp, mp*mp*mp, sp*sp*sp
	return gammaEncode(4.0767416621*lc - 3.3077115913*mc + 0.2309699292*sc),
		gammaEncode(-1.2684380046*lc + 2.6097574011*mc - 0.3413193965*sc),
		gammaEncode(-0.0041960863*lc - 0.7034186147*mc + 1.7076147010*sc)
}

// labToSRGB converts CIE Lab (D50) to gamma-encoded sRGB.
func labToSRGB(l, a, b float64) (float64, float64, float64) {
	const (
		eps   = 216.0 / 24389.0
		kappa = 24389.0 / 27.0
	)
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	xr := fx * fx * fx
	if xr <= eps {
		xr = (116*fx - 16) / kappa
	}
	yr := fy * fy * fy
	if l <= kappa*eps {
		yr = l / kappa
	}
	zr := fz * fz * fz
	if zr <= eps {
		zr = (116*fz - 16) / kappa
	}
	x, y, z := xr*0.96422, yr, zr*0.82521

	// Bradford D50 to D65.
	x65 := 0.9554734527042182*x - 0.023098536874261423*y + 0.0632593086610217*z
	y65 := -0.028369706963208136*x + 1.0099954580058226*y + 0.021041398966943008*z
	z65 := 0.012314001688319899*x - 0.020507696433477912*y + 1.3303659366080753*z
	return xyzToSRGB(x65, y65, z65)
}

func xyzToSRGB(x, y, z float64) (float64, float64, float64) {
	return gammaEncode(3.2409699419045226*x - 1.537383177570094*y - 0.4986107602930034*z),
		gammaEncode(-0.9692436362808796*x + 1.8759675015077202*y + 0.04155505740717559*z),
		gammaEncode(0.05563007969699366*x - 0.20397695888897652*y + 1.0569715142428786*z)
}

func predefinedToSRGB(space string, r, g, b float64) (float64, float64, float64, bool) {
	switch space {
	case "srgb":
		return r, g, b, true
	case "srgb-linear":
		return gammaEncode(r), gammaEncode(g), gammaEncode(b), true
	case "display-p3":
		lr, lg, lb := gammaDecode(r), gammaDecode(g), gammaDecode(b)
		x := 0.4865709486482162*lr + 0.26566769316909306*lg + 0.1982172852343625*lb
		y := 0.2289745640697488*lr + 0.6917385218365064*lg + 0.079286914093745*lb
		z := 0.04511338185890264*lg + 1.043944368900976*lb
		sr, sg, sb := xyzToSRGB(x, y, z)
		return sr, sg, sb, true
	case "xyz", "xyz-d65":
		sr, sg, sb := xyzToSRGB(r, g, b)
		return sr, sg, sb, true
	default:
		return 0, 0, 0, false
	}
}

func hwbToSRGB(h, w, bl float64) (float64, float64, float64) {
	if w+bl >= 1 {
		gray := w / (w + bl)
		return gray, gray, gray
	}
	r, g, b := hueToRGB(h)
	scale := 1 - w - bl
	return r*scale + w, g*scale + w, b*scale + w
}

// hueToRGB returns the fully saturated color of hue h at 50% lightness.
func hueToRGB(h float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	f := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		return 0.5 - 0.5*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
	}
	return f(0), f(8), f(4)
}

func gammaEncode(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign, x = -1, -x
	}
	if x <= 0.0031308 {
		return sign * 12.92 * x
	}
	return sign * (1.055*math.Pow(x, 1/2.4) - 0.055)
}

func gammaDecode(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign, x = -1, -x
	}
	if x <= 0.04045 {
		return sign * x / 12.92
	}
	return sign * math.Pow((x+0.055)/1.055, 2.4)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func formatRGB(r, g, b, alpha float64) string {
	to8 := func(v float64) int { return int(math.Round(clamp(v, 0, 1) * 255)) }
	if alpha >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", to8(r), to8(g), to8(b))
	}
	a := strconv.FormatFloat(math.Round(alpha*1000)/1000, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", to8(r), to8(g), to8(b), a)
}
