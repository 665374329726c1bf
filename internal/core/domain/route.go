package domain

// RouteStep is one human-readable directive plus the segment of path it
// covers.
type RouteStep struct {
	Instruction string     `json:"instruction"`
	Path        []GeoPoint `json:"path,omitempty"`
}

// Route is a normalized walking route: total distance, ordered turn
// instructions, and the full path in traversal order.
type Route struct {
	DistanceMeters float64     `json:"distance_meters"`
	Steps          []RouteStep `json:"steps"`
	Path           []GeoPoint  `json:"path"`
}

// PipelineRequest is the input contract of the resolution pipeline.
// Both addresses are free text; the only validation is non-emptiness.
type PipelineRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Resolution is the terminal outcome of one successful pipeline run.
type Resolution struct {
	Route      *Route   `json:"route"`
	StartPoint GeoPoint `json:"start_point"`
	EndPoint   GeoPoint `json:"end_point"`
}
