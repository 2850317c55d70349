package suggest

import "github.com/placeserve/placeserve/pkg/geodata"

// Coordinates used across tests.
var (
	nearNewYork      = &LatLong{Latitude: 40.6976633, Longitude: -74.1201063}
	nearSanFrancisco = &LatLong{Latitude: 37.7577627, Longitude: -122.4727052}
)

func testRecords() []geodata.PlaceRecord {
	names := []struct {
		id         int
		name       string
		region     string
		country    string
		lat, long  float64
		population int64
	}{
		{6077243, "Montréal", "Quebec", "CA", 45.50884, -73.58781, 3268513},
		{6077265, "Montréal-Ouest", "Quebec", "CA", 45.45286, -73.64918, 5184},
		{5106160, "Washington", "New Jersey", "US", 40.75843, -74.98628, 6461},
		{5549222, "Washington", "Utah", "US", 37.13054, -113.50829, 18761},
		{5128581, "New York City", "New York", "US", 40.71427, -74.00597, 8175133},
		{5391959, "San Francisco", "California", "US", 37.77493, -122.41942, 805235},
		{6058560, "London", "Ontario", "CA", 42.98339, -81.23304, 346765},
	}

	records := make([]geodata.PlaceRecord, 0, len(names))
	for _, n := range names {
		records = append(records, geodata.PlaceRecord{
			ID:         n.id,
			Name:       n.name,
			Region:     n.region,
			Country:    n.country,
			Latitude:   n.lat,
			Longitude:  n.long,
			Population: n.population,
			Key:        Normalize(n.name),
		})
	}
	return records
}

func testIndex() *geodata.Index {
	return geodata.NewIndex(testRecords())
}
