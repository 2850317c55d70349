package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placeserve/placeserve/pkg/config"
	"github.com/placeserve/placeserve/pkg/geodata"
	"github.com/placeserve/placeserve/pkg/suggest"
)

func testIndex() *geodata.Index {
	names := []struct {
		id         int
		name       string
		region     string
		country    string
		lat, long  float64
		population int64
	}{
		{6077243, "Montréal", "Quebec", "CA", 45.50884, -73.58781, 3268513},
		{5106160, "Washington", "New Jersey", "US", 40.75843, -74.98628, 6461},
		{5549222, "Washington", "Utah", "US", 37.13054, -113.50829, 18761},
		{6058560, "London", "Ontario", "CA", 42.98339, -81.23304, 346765},
	}
	records := make([]geodata.PlaceRecord, 0, len(names))
	for _, n := range names {
		records = append(records, geodata.PlaceRecord{
			ID: n.id, Name: n.name, Region: n.region, Country: n.country,
			Latitude: n.lat, Longitude: n.long, Population: n.population,
			Key: suggest.Normalize(n.name),
		})
	}
	return geodata.NewIndex(records)
}

func newTestHandler(t *testing.T, budget int) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Rate.Budget = budget
	cfg.Session.SweepSeconds = 0
	svc := suggest.NewService(testIndex(), cfg)
	t.Cleanup(svc.Close)
	return NewServer(svc, cfg).Handler()
}

func doGet(h http.Handler, url string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSuggestionsOK(t *testing.T) {
	h := newTestHandler(t, 100)

	w := doGet(h, "/suggestions?q=Montreal", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Suggestions)

	top := body.Suggestions[0]
	assert.Regexp(t, regexp.MustCompile(`(?i)montréal`), top.Name)
	assert.Greater(t, top.Score, 0.0)
	assert.LessOrEqual(t, top.Score, 1.0)
	assert.NotZero(t, top.Latitude)
	assert.NotZero(t, top.Longitude)

	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("ETag"))

	// First contact mints a session cookie.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSuggestionsMissingQuery(t *testing.T) {
	h := newTestHandler(t, 100)

	w := doGet(h, "/suggestions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "q")
}

func TestSuggestionsBadLocation(t *testing.T) {
	h := newTestHandler(t, 100)

	for _, url := range []string{
		"/suggestions?q=montreal&latitude=abc&longitude=-73.5",
		"/suggestions?q=montreal&latitude=45.5",
		"/suggestions?q=montreal&longitude=-73.5",
	} {
		w := doGet(h, url, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestSuggestionsNoMatch(t *testing.T) {
	h := newTestHandler(t, 100)

	w := doGet(h, "/suggestions?q=SomeRandomCityInTheMiddleOfNowhere", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotNil(t, body.Suggestions)
	assert.Empty(t, body.Suggestions)
}

func TestSuggestionsNotModified(t *testing.T) {
	h := newTestHandler(t, 100)
	cookie := &http.Cookie{Name: sessionCookie, Value: "sess-304"}

	first := doGet(h, "/suggestions?q=montr", cookie)
	require.Equal(t, http.StatusOK, first.Code)

	second := doGet(h, "/suggestions?q=montr", cookie)
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.Bytes())
	assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
}

func TestSuggestionsGeoBias(t *testing.T) {
	h := newTestHandler(t, 100)

	w := doGet(h, "/suggestions?q=Washing&latitude=37.7577627&longitude=-122.4727052", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fromSF SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fromSF))
	require.NotEmpty(t, fromSF.Suggestions)
	assert.Contains(t, fromSF.Suggestions[0].Name, "Utah, US")

	w = doGet(h, "/suggestions?q=Washing&latitude=40.6976633&longitude=-74.1201063", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fromNY SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fromNY))
	require.NotEmpty(t, fromNY.Suggestions)
	assert.Contains(t, fromNY.Suggestions[0].Name, "New Jersey, US")
}

func TestSuggestionsRateLimited(t *testing.T) {
	h := newTestHandler(t, 2)

	// httptest requests share one RemoteAddr, so they count as one client.
	first := doGet(h, "/suggestions?q=montreal", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := doGet(h, "/suggestions?q=washington", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := doGet(h, "/suggestions?q=london", nil)
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "1", third.Header().Get("Retry-After"))
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, 100)
	w := doGet(h, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
