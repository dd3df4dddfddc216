package window

// Point is a screen coordinate.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle from Origin (upper left) to End (lower
// right) in screen coordinates.
type Rect struct {
	Origin Point
	End    Point
}

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.End.X - r.Origin.X }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.End.Y - r.Origin.Y }

// Area returns Width * Height.
func (r Rect) Area() int { return r.Width() * r.Height() }

// ContainsPoint reports whether p lies inside the rectangle, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return r.Origin.X <= p.X && p.X <= r.End.X &&
		r.Origin.Y <= p.Y && p.Y <= r.End.Y
}

// ContainsRect reports whether other lies entirely inside the rectangle.
func (r Rect) ContainsRect(other Rect) bool {
	return r.ContainsPoint(other.Origin) && r.ContainsPoint(other.End)
}

// Intersects reports whether the rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return !(r.End.Y < other.Origin.Y ||
		r.Origin.Y > other.End.Y ||
		r.End.X < other.Origin.X ||
		r.Origin.X > other.End.X)
}
