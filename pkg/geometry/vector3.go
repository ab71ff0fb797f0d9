package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used by Eq.
// float32 carries about 7 significant digits, so this is much looser than a float64 epsilon.
const (
	Epsilon = 1e-5
)

// Vector3 represents a 3D vector or point in cartesian space.
// Fields are public because they are plain data: v := Vector3{X: 1, Y: 2, Z: 3}
// The z axis is the vertical one (altitude) for slope clamping.
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Zero is the zero vector.
var Zero = Vector3{}

// NewVector creates a new Vector3.
func NewVector(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// ---------------------------------------------------------------------
// Stringer Interface
// ---------------------------------------------------------------------

// String implements the fmt.Stringer interface.
func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values, the vector is never aliased.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3) Mul(scalar float32) Vector3 {
	return Vector3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Div scales the vector by 1/scalar.
// Dividing by zero follows IEEE-754 and yields Inf or NaN components, callers must not rely on it.
func (v Vector3) Div(scalar float32) Vector3 {
	return Vector3{v.X / scalar, v.Y / scalar, v.Z / scalar}
}

// Neg returns the opposite vector.
func (v Vector3) Neg() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

// ---------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3) Dot(other Vector3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Use it for comparisons, it avoids the square root.
func (v Vector3) LenSqr() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSqr())))
}

// Normalize scales v in place to unit length.
// A zero-length vector is left unchanged, so it never turns into NaN.
func (v *Vector3) Normalize() {
	l := v.Len()
	if l == 0 {
		return
	}
	v.X /= l
	v.Y /= l
	v.Z /= l
}

// Normalized returns a unit vector in the same direction, or the zero vector.
func (v Vector3) Normalized() Vector3 {
	v.Normalize()
	return v
}

// ClampMagnitude limits the length of v in place to max.
// It does nothing when the length is already strictly below max.
func (v *Vector3) ClampMagnitude(max float32) {
	if v.Len() < max {
		return
	}
	v.Normalize()
	*v = v.Mul(max)
}

// Clamped is the pure variant of ClampMagnitude.
func (v Vector3) Clamped(max float32) Vector3 {
	v.ClampMagnitude(max)
	return v
}

// ClampSlope limits the vertical component to maxDz times the length before
// clamping, in both directions. X and Y are kept so the horizontal speed is
// unchanged. The result can still be steeper than maxDz relative to its own,
// shorter length.
func (v Vector3) ClampSlope(maxDz float32) Vector3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	switch slope := v.Z / l; {
	case slope > maxDz:
		v.Z = l * maxDz
	case slope < -maxDz:
		v.Z = -l * maxDz
	}
	return v
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3) DistanceTo(other Vector3) float32 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3) DistanceSquaredTo(other Vector3) float32 {
	return v.Sub(other).LenSqr()
}

// AngleTo returns the angle between v and other in radians, in [0, Pi].
// The result is NaN when either vector has zero length.
func (v Vector3) AngleTo(other Vector3) float32 {
	cos := float64(v.Dot(other)) / (float64(v.Len()) * float64(other.Len()))
	if math.IsNaN(cos) {
		return float32(cos)
	}
	// rounding can push the cosine slightly outside [-1, 1]
	cos = math.Max(-1, math.Min(1, cos))
	return float32(math.Acos(cos))
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3) Eq(other Vector3) bool {
	return abs(v.X-other.X) <= Epsilon &&
		abs(v.Y-other.Y) <= Epsilon &&
		abs(v.Z-other.Z) <= Epsilon
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
