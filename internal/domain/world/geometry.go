package world

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned block of cells anchored at its top-left corner.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) Anchor() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Cells lists the covered cells in row-major order.
func (r Rect) Cells() []Point {
	if r.Empty() {
		return nil
	}
	out := make([]Point, 0, r.Width*r.Height)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}
