// Package geom provides the 2D vector and shape math shared by the ocean
// simulator's physics and collision passes.
package geom

import "math"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X, Y float64
}

func Add(a, b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func Sub(a, b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func Mul(a Vec2, s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

func Length(a Vec2) float64 { return math.Sqrt(a.X*a.X + a.Y*a.Y) }

// Normalize returns the unit vector of a, or the zero vector if a is zero.
func Normalize(a Vec2) Vec2 {
	l := Length(a)
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

func Distance(a, b Vec2) float64 { return Length(Sub(a, b)) }

// Lerp interpolates a toward b by t in [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Rect is an axis-aligned rectangle, used for the world bounds and the
// quadtree's node bounds.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// IntersectsCircle reports whether a circle of the given center/radius
// overlaps this rectangle (used by the quadtree's range query).
func (r Rect) IntersectsCircle(center Vec2, radius float64) bool {
	closestX := Clamp(center.X, r.X, r.X+r.W)
	closestY := Clamp(center.Y, r.Y, r.Y+r.H)
	dx := center.X - closestX
	dy := center.Y - closestY
	return dx*dx+dy*dy <= radius*radius
}

// Circle is a position and radius.
type Circle struct {
	Center Vec2
	Radius float64
}

// OBB is an oriented bounding box: center, half-extents, and rotation.
type OBB struct {
	Center      Vec2
	HalfExtents Vec2
	Rotation    float64
}

// CircleCircle reports whether two circles overlap.
func CircleCircle(a, b Circle) bool {
	d := Distance(a.Center, b.Center)
	r := a.Radius + b.Radius
	return d*d < r*r
}

// CircleOBB reports whether a circle overlaps an oriented box, by
// transforming the circle's center into the box's local (unrotated) space.
func CircleOBB(c Circle, b OBB) bool {
	rel := Sub(c.Center, b.Center)
	cosT := math.Cos(-b.Rotation)
	sinT := math.Sin(-b.Rotation)
	localX := rel.X*cosT - rel.Y*sinT
	localY := rel.X*sinT + rel.Y*cosT

	clampedX := Clamp(localX, -b.HalfExtents.X, b.HalfExtents.X)
	clampedY := Clamp(localY, -b.HalfExtents.Y, b.HalfExtents.Y)

	dx := localX - clampedX
	dy := localY - clampedY
	return dx*dx+dy*dy < c.Radius*c.Radius
}

// OBBOBB is a simplified box-box overlap test: the pair is treated as
// circles of radius (w1+w2)/2 around their centers. It returns whether they
// collide and the unit separation vector from a to b (the direction b
// should be pushed in to separate from a). When the centers coincide the
// separation axis defaults to (1,0).
func OBBOBB(a, b OBB) (bool, Vec2) {
	avgWidth := (a.HalfExtents.X + b.HalfExtents.X)
	d := Sub(b.Center, a.Center)
	dist := Length(d)
	if dist < 1e-9 {
		return true, Vec2{1, 0}
	}
	collides := dist < avgWidth
	return collides, Normalize(d)
}
