package dto

import (
	"fmt"
	"hash/fnv"
)

// AvatarColor derives a stable hex color from a user id, so clients can draw
// placeholder avatars that look the same everywhere. Saturation and lightness
// are fixed; only the hue varies.
func AvatarColor(userID string) string {
	if userID == "" {
		return "#A6A6A6"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue/360, 0.4, 0.65)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h, s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	channel := func(t float64) uint8 {
		switch {
		case t < 0:
			t++
		case t > 1:
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 1.0/2:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(v*255 + 0.5)
	}
	return channel(h + 1.0/3), channel(h), channel(h - 1.0/3)
}
