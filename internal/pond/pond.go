// Package pond renders the water backdrop behind the ducks from layered
// simplex noise. The round seed drives the noise, so a shared seed also
// shares the look of the pond.
package pond

import (
	"image"
	"image/color"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

var (
	shallow = color.RGBA{0x73, 0xc2, 0xd8, 0xff}
	deep    = color.RGBA{0x2a, 0x6f, 0x97, 0xff}
	glint   = color.RGBA{0xe8, 0xf6, 0xfa, 0xff}
)

// Pond is a seeded water texture.
type Pond struct {
	depth  opensimplex.Noise
	ripple opensimplex.Noise

	Frequency float64 // depth features per arena unit
	Octaves   int
}

// New creates the pond for a seed.
func New(seed int64) *Pond {
	return &Pond{
		depth:     opensimplex.NewNormalized(seed),
		ripple:    opensimplex.NewNormalized(seed + 1),
		Frequency: 0.004,
		Octaves:   4,
	}
}

// Depth returns the water depth at an arena position, in [0,1].
func (p *Pond) Depth(x, y float64) float64 {
	return octaveNoise(p.depth, x, y, p.Octaves, p.Frequency, 0.5)
}

// Ripple returns the surface ripple at an arena position and time in
// seconds, in [0,1]. Ripples drift slowly with t.
func (p *Pond) Ripple(x, y, t float64) float64 {
	return p.ripple.Eval3(x*0.03, y*0.03, t*0.25)
}

// Color shades a point: deeper water is darker, strong ripples glint.
func (p *Pond) Color(x, y, t float64) color.RGBA {
	c := lerpRGBA(shallow, deep, p.Depth(x, y))
	if r := p.Ripple(x, y, t); r > 0.8 {
		c = lerpRGBA(c, glint, (r-0.8)*2.5)
	}
	return c
}

// Render paints img with the pond at time t, mapping image pixels 1:1 to
// arena units. Colour is sampled once per cell×cell block.
func (p *Pond) Render(img *image.RGBA, t float64, cell int) {
	if cell < 1 {
		cell = 1
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += cell {
		for x := b.Min.X; x < b.Max.X; x += cell {
			c := p.Color(float64(x), float64(y), t)
			for dy := 0; dy < cell && y+dy < b.Max.Y; dy++ {
				for dx := 0; dx < cell && x+dx < b.Max.X; dx++ {
					img.SetRGBA(x+dx, y+dy, c)
				}
			}
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}
