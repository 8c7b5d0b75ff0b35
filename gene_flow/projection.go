package gene_flow

// ProjectionPoint is the frequency projected for one generation, numbered from 1.
type ProjectionPoint struct {
	Generation int     `json:"generation"`
	Frequency  float64 `json:"frequency"`
}

// Project maps trajectory index i to generation i+1, preserving order.
func Project(traj Trajectory) []ProjectionPoint {
	points := make([]ProjectionPoint, len(traj))
	for i, f := range traj {
		points[i] = ProjectionPoint{Generation: i + 1, Frequency: f}
	}
	return points
}
