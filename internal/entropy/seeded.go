// Package entropy provides the deterministic generator that lays out a round
// and the sources used to pick seeds for new rounds.
package entropy

import (
	"math"
	"time"
)

// SeededRandom returns a float in [0, 1) derived from seed alone.
//
// The value is the fractional part of sin(seed) * 10000. The same seed
// always yields the same value, which is what makes a seed reproduce a
// round's layout.
func SeededRandom(seed int64) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}

// ColorSeed is the seed used to pick the colour of group g.
func ColorSeed(seed int64, g int) int64 {
	return seed + int64(g)
}

// AngleSeed is the seed used for the spawn angle of member m of group g.
func AngleSeed(seed int64, g, m int) int64 {
	return seed + int64(g)*10 + int64(m)
}

// RadiusSeed is the seed used for the spawn distance of member m of group g.
func RadiusSeed(seed int64, g, m int) int64 {
	return seed + int64(g)*20 + int64(m)
}

// DailySeed encodes the calendar date of t as year*10000 + month*100 + day,
// so everybody playing on the same day gets the same round.
func DailySeed(t time.Time) int64 {
	y, m, d := t.Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}
