// Package avatar derives a stable fallback visual identity for profiles
// without a real avatar. The derivation is pure and local: the same seed
// always yields the same gradient and glyph, with no network involved.
package avatar

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// placeholderSentinel marks avatar URLs that are not real user uploads.
const placeholderSentinel = "default-avatar"

// Gradient is a two-stop linear gradient, 135 degree diagonal.
type Gradient struct {
	From string
	To   string
}

// Avatar is the resolved fallback appearance for a seed.
type Avatar struct {
	Gradient Gradient
	Glyph    string
}

// 渐变色方案
var gradients = []Gradient{
	{"#667eea", "#764ba2"},
	{"#f093fb", "#f5576c"},
	{"#4facfe", "#00f2fe"},
	{"#43e97b", "#38f9d7"},
	{"#fa709a", "#fee140"},
	{"#30cfd0", "#330867"},
	{"#a8edea", "#fed6e3"},
	{"#ff9a9e", "#fecfef"},
	{"#ffecd2", "#fcb69f"},
	{"#ff6e7f", "#bfe9ff"},
	{"#e0c3fc", "#8ec5fc"},
	{"#f77062", "#fe5196"},
	{"#fbc2eb", "#a6c1ee"},
	{"#fdcbf1", "#e6dee9"},
	{"#a1c4fd", "#c2e9fb"},
	{"#d299c2", "#fef9d7"},
	{"#89f7fe", "#66a6ff"},
	{"#e52d27", "#b31217"},
	{"#2af598", "#009efd"},
	{"#ee9ca7", "#ffdde1"},
}

// 可爱的emoji表情
var glyphs = []string{
	"🦊", "🐱", "🐶", "🐼", "🐨", "🐰", "🦁", "🐯", "🐮", "🐷",
	"🐸", "🐵", "🐔", "🐧", "🐦", "🦄", "🐝", "🦋", "🐳", "🐬",
	"🌸", "🌺", "🌻", "🌷", "🌹", "💐", "🌈", "⭐", "💫", "✨",
	"🎨", "🎭", "🎪", "🎬", "🎮", "🎯", "🎲", "🎼", "🎵", "🎸",
	"🍎", "🍇", "🍊", "🍋", "🍌", "🍉", "🍓", "🍑", "🍒", "🥝",
}

// hashSeed computes a 32-bit signed hash of the seed with standard
// overflow wraparound at every step, then takes the absolute value.
func hashSeed(seed string) int64 {
	var h int32
	for _, r := range seed {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Resolve maps a seed onto its stable gradient and glyph. The two indices
// are computed independently against each table size.
func Resolve(seed string) Avatar {
	h := hashSeed(seed)
	return Avatar{
		Gradient: gradients[h%int64(len(gradients))],
		Glyph:    glyphs[h%int64(len(glyphs))],
	}
}

var (
	fallbackSeedOnce sync.Once
	fallbackSeed     string
)

// SeedFor derives the hash seed for a profile identifier. An empty
// identifier falls back to a process-local unique value so anonymous
// profiles keep one appearance for the process lifetime.
func SeedFor(id string) string {
	if id != "" {
		return id
	}
	fallbackSeedOnce.Do(func() {
		fallbackSeed = fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	})
	return fallbackSeed
}

// SVGDataURI renders the resolved avatar as an inline SVG data URI.
func SVGDataURI(seed string, size int) string {
	if size <= 0 {
		size = 200
	}
	a := Resolve(seed)

	svg := fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+
		`<defs><linearGradient id="grad" x1="0%%" y1="0%%" x2="100%%" y2="100%%">`+
		`<stop offset="0%%" style="stop-color:%s;stop-opacity:1" />`+
		`<stop offset="100%%" style="stop-color:%s;stop-opacity:1" />`+
		`</linearGradient></defs>`+
		`<rect width="%d" height="%d" fill="url(#grad)" rx="%d"/>`+
		`<text x="50%%" y="50%%" text-anchor="middle" dy=".35em" font-size="%d" fill="white" opacity="0.9">%s</text>`+
		`</svg>`,
		size, size, a.Gradient.From, a.Gradient.To, size, size, size/10, size/2, a.Glyph)

	return "data:image/svg+xml;charset=utf-8," + url.PathEscape(svg)
}

// DefaultStyle is the remote avatar-service style used when none is given.
const DefaultStyle = "fun-emoji"

// RemoteURL returns a deterministic external avatar-service URL for the
// seed. Same seed rule as SVGDataURI, so both renderings agree.
func RemoteURL(seed, style string) string {
	if style == "" {
		style = DefaultStyle
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?seed=%s&size=200",
		style, url.QueryEscape(seed))
}

// Styles lists the remote avatar-service styles the client offers.
func Styles() []string {
	return []string{
		"adventurer", "avataaars", "bottts", "fun-emoji",
		"lorelei", "micah", "open-peeps", "personas",
	}
}

// Present picks the avatar to display: a real uploaded URL verbatim, or
// the deterministic inline fallback derived from the profile identifier.
func Present(realURL, profileID string) string {
	if realURL != "" && !strings.Contains(realURL, placeholderSentinel) {
		return realURL
	}
	return SVGDataURI(SeedFor(profileID), 200)
}
