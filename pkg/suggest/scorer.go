package suggest

import (
	"math"
	"sort"

	"github.com/placeserve/placeserve/pkg/geodata"
)

// LatLong is a caller location in decimal degrees.
type LatLong struct {
	Latitude  float64
	Longitude float64
}

// Suggestion is the public result unit returned to the transport layer.
type Suggestion struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Score     float64 `json:"score"`

	place *geodata.PlaceRecord
}

// Scorer turns candidates into the final ranked suggestion list. Pure given
// its inputs: same candidates and location always produce the same ranking.
type Scorer struct {
	maxResults int
	decayKm    float64
	floor      float64
}

// NewScorer creates a scorer. decayKm sets how fast the proximity
// multiplier falls off with great-circle distance; floor is the multiplier
// it decays towards for far-away places (never zero, so distant exact
// matches still surface).
func NewScorer(maxResults int, decayKm, floor float64) *Scorer {
	return &Scorer{maxResults: maxResults, decayKm: decayKm, floor: floor}
}

// Score combines textual similarity with proximity to the caller, then
// sorts descending by score with ties broken by population (descending)
// and name (ascending). The list is deduplicated by place and capped.
func (s *Scorer) Score(candidates []Candidate, clientLocation *LatLong) []Suggestion {
	results := make([]Suggestion, 0, len(candidates))
	seen := make(map[int]struct{}, len(candidates))

	for _, c := range candidates {
		if _, ok := seen[c.Place.ID]; ok {
			continue
		}
		seen[c.Place.ID] = struct{}{}

		score := c.Similarity
		if clientLocation != nil {
			score *= s.proximity(clientLocation, c.Place)
		}
		score = math.Round(clamp01(score)*1e4) / 1e4

		results = append(results, Suggestion{
			Name:      c.Place.DisplayName(),
			Latitude:  c.Place.Latitude,
			Longitude: c.Place.Longitude,
			Score:     score,
			place:     c.Place,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].place.Population != results[j].place.Population {
			return results[i].place.Population > results[j].place.Population
		}
		return results[i].Name < results[j].Name
	})

	if s.maxResults > 0 && len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results
}

// proximity decays exponentially from 1 at the caller's position towards
// the floor, so a nearby place keeps almost its full textual score while a
// far one is damped but never erased.
func (s *Scorer) proximity(loc *LatLong, p *geodata.PlaceRecord) float64 {
	d := haversineKm(loc.Latitude, loc.Longitude, p.Latitude, p.Longitude)
	return s.floor + (1-s.floor)*math.Exp(-d/s.decayKm)
}

const earthRadiusKm = 6371.0

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
