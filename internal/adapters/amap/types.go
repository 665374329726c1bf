package amap

// AMap v3 responses carry numbers as strings and coordinates as
// "lon,lat" pairs. These structs mirror the wire shape verbatim;
// conversion to domain types happens in the adapter methods.

type geocodeResponse struct {
	Status   string    `json:"status"`
	Info     string    `json:"info"`
	Count    string    `json:"count"`
	Geocodes []geocode `json:"geocodes"`
}

type geocode struct {
	FormattedAddress string `json:"formatted_address"`
	Location         string `json:"location"`
	Level            string `json:"level"`
}

type walkingResponse struct {
	Status string       `json:"status"`
	Info   string       `json:"info"`
	Count  string       `json:"count"`
	Route  walkingRoute `json:"route"`
}

type walkingRoute struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Paths       []walkingPath `json:"paths"`
}

type walkingPath struct {
	Distance string        `json:"distance"`
	Duration string        `json:"duration"`
	Polyline string        `json:"polyline"`
	Steps    []walkingStep `json:"steps"`
}

type walkingStep struct {
	Instruction string `json:"instruction"`
	Road        string `json:"road"`
	Distance    string `json:"distance"`
	Polyline    string `json:"polyline"`
}
