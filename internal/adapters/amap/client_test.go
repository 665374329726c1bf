package amap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wayfinderhq/wayfinder/internal/adapters/amap"
	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *amap.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return amap.New("test-key", srv.URL, 2*time.Second)
}

func TestGeocode_FirstCandidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/geocode/geo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != "Tiananmen Square" {
			t.Errorf("address = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		w.Write([]byte(`{"status":"1","info":"OK","count":"2","geocodes":[
			{"formatted_address":"Tiananmen","location":"116.397477,39.908692"},
			{"formatted_address":"Other","location":"117.0,40.0"}
		]}`))
	})

	point, err := client.Geocode(context.Background(), "Tiananmen Square")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point == nil {
		t.Fatal("expected a point")
	}
	if point.Lon != 116.397477 || point.Lat != 39.908692 {
		t.Errorf("got %+v, want lon=116.397477 lat=39.908692", point)
	}
}

func TestGeocode_NoMatchReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","info":"OK","count":"0","geocodes":[]}`))
	})

	point, err := client.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point != nil {
		t.Fatalf("expected nil point, got %+v", point)
	}
}

func TestGeocode_ServiceRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","info":"INVALID_USER_KEY"}`))
	})

	if _, err := client.Geocode(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error for status 0")
	}
}

func TestGeocode_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.Geocode(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestSearchWalking_MapsPathsAndSteps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/direction/walking" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("origin"); got != "116.400000,39.900000" {
			t.Errorf("origin = %q", got)
		}
		w.Write([]byte(`{"status":"1","info":"OK","count":"1","route":{
			"origin":"116.4,39.9","destination":"116.41,39.91",
			"paths":[{"distance":"850","duration":"700",
				"steps":[
					{"instruction":"Head north","polyline":"116.4,39.9;116.4,39.905"},
					{"instruction":"Turn right","polyline":"116.4,39.905;116.41,39.91"}
				]}]}}`))
	})

	res, err := client.SearchWalking(context.Background(),
		domain.GeoPoint{Lat: 39.9, Lon: 116.4},
		domain.GeoPoint{Lat: 39.91, Lon: 116.41},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(res.Paths))
	}
	path := res.Paths[0]
	if path.DistanceMeters != 850 {
		t.Errorf("distance = %v, want 850", path.DistanceMeters)
	}
	if len(path.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(path.Steps))
	}
	if path.Steps[0].Instruction != "Head north" {
		t.Errorf("step 0 instruction = %q", path.Steps[0].Instruction)
	}
	if path.Steps[1].Polyline != "116.4,39.905;116.41,39.91" {
		t.Errorf("step 1 polyline = %q", path.Steps[1].Polyline)
	}
}

func TestSearchWalking_EmptyPathsIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","info":"OK","count":"0","route":{"paths":[]}}`))
	})

	res, err := client.SearchWalking(context.Background(),
		domain.GeoPoint{Lat: 39.9, Lon: 116.4},
		domain.GeoPoint{Lat: 39.91, Lon: 116.41},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Paths) != 0 {
		t.Fatalf("expected no paths, got %d", len(res.Paths))
	}
}

func TestSearchWalking_ServiceRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","info":"DAILY_QUERY_OVER_LIMIT"}`))
	})

	_, err := client.SearchWalking(context.Background(),
		domain.GeoPoint{Lat: 39.9, Lon: 116.4},
		domain.GeoPoint{Lat: 39.91, Lon: 116.41},
	)
	if err == nil {
		t.Fatal("expected error for status 0")
	}
}
