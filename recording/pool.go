package recording

// ResourcePool stores the point runs referenced by StrokePolylineCommand.
// Runs are copied on insert so a Recording never aliases caller memory.
//
// ResourcePool is not safe for concurrent use.
type ResourcePool struct {
	points []Point
	runs   []span
}

type span struct {
	start, end int
}

// NewResourcePool creates an empty pool.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		points: make([]Point, 0, 1024),
		runs:   make([]span, 0, 32),
	}
}

// AddPolyline copies pts into the pool and returns its reference.
func (p *ResourcePool) AddPolyline(pts []Point) PolylineRef {
	start := len(p.points)
	p.points = append(p.points, pts...)
	p.runs = append(p.runs, span{start: start, end: len(p.points)})
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return PolylineRef(uint32(len(p.runs) - 1))
}

// Polyline returns the points of ref, or nil for an unknown reference.
// The returned slice must not be modified.
func (p *ResourcePool) Polyline(ref PolylineRef) []Point {
	if int(ref) >= len(p.runs) {
		return nil
	}
	s := p.runs[ref]
	return p.points[s.start:s.end:s.end]
}

// PolylineCount returns the number of runs in the pool.
func (p *ResourcePool) PolylineCount() int {
	return len(p.runs)
}

// PointCount returns the total number of pooled points.
func (p *ResourcePool) PointCount() int {
	return len(p.points)
}

// Clear empties the pool, keeping its storage.
func (p *ResourcePool) Clear() {
	p.points = p.points[:0]
	p.runs = p.runs[:0]
}
