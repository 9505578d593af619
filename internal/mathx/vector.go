package mathx

import (
	"math"
	"math/rand"
)

// Vector2 is a 2D vector. All methods are value-style: they return a new
// vector and never mutate the receiver.
type Vector2 struct {
	X float64
	Y float64
}

func Vec2(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

func (v Vector2) Add(o Vector2) Vector2      { return Vector2{v.X + o.X, v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2      { return Vector2{v.X - o.X, v.Y - o.Y} }
func (v Vector2) Multiply(o Vector2) Vector2 { return Vector2{v.X * o.X, v.Y * o.Y} }
func (v Vector2) Scale(s float64) Vector2    { return Vector2{v.X * s, v.Y * s} }

func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2) Distance(o Vector2) float64 {
	return v.Sub(o).Length()
}

// Normalize returns a unit vector in the same direction, or the zero
// vector if the length is zero.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return v.Scale(1 / l)
}

// Rotate rotates the vector by the given angle in radians.
func (v Vector2) Rotate(angle float64) Vector2 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Vector2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Floor rounds both components toward negative infinity.
func (v Vector2) Floor() Vector2 {
	return Vector2{math.Floor(v.X), math.Floor(v.Y)}
}

// Lerp interpolates between v and o by t in [0,1].
func (v Vector2) Lerp(o Vector2, t float64) Vector2 {
	return v.Add(o.Sub(v).Scale(Clamp(t, 0, 1)))
}

// Valid reports whether both components are finite. Live entities must
// never carry NaN or infinite positions/velocities.
func (v Vector2) Valid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// RandVector returns a random direction vector of the given length.
func RandVector(length float64) Vector2 {
	a := rand.Float64() * 2 * math.Pi
	return Vector2{math.Cos(a) * length, math.Sin(a) * length}
}

// Lerp interpolates between a and b by t, clamped to [0,1].
func Lerp(t, a, b float64) float64 {
	return a + (b-a)*Clamp(t, 0, 1)
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Sign returns -1 for negative values, 1 otherwise.
func Sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// IsOverlapping reports whether two AABBs given as center + full size
// overlap. Touching edges do not count as overlap.
func IsOverlapping(posA, sizeA, posB, sizeB Vector2) bool {
	return math.Abs(posA.X-posB.X)*2 < sizeA.X+sizeB.X &&
		math.Abs(posA.Y-posB.Y)*2 < sizeA.Y+sizeB.Y
}
