package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings", r.URL.Path)
		assert.Equal(t, "grocery near delhi", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"Big Kirana","category":"Kirana Store","phone":"+91 98765 43210","location":{"lat":28.61,"lon":77.20}},
			{"name":"Broken Listing","category":"Grocery"}
		]`))
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	listings, err := p.Fetch(context.Background(), "grocery near delhi")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Big Kirana", listings[0].Name)
	require.NotNil(t, listings[0].Location)
	assert.InDelta(t, 28.61, listings[0].Location.Lat, 1e-9)

	// A listing without a coordinate still comes through; normalization
	// decides its fate.
	assert.Nil(t, listings[1].Location)
}

func TestHTTPProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	_, err := p.Fetch(context.Background(), "grocery near delhi")
	assert.Error(t, err)
}

func TestFileProviderFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.tsv")
	content := "name\tcategory\tphone\taddress\timage\tlon\tlat\n" +
		"Apollo Pharmacy\tPharmacy\t+91 98765 43210\t12 MG Road\t\t77.209\t28.6139\n" +
		"No Coords\tGrocery\t\t\t\tnot-a-number\t28.6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewFile(path)
	listings, err := p.Fetch(context.Background(), "seed")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Apollo Pharmacy", listings[0].Name)
	require.NotNil(t, listings[0].Location)
	assert.InDelta(t, 77.209, listings[0].Location.Lon, 1e-9)
	assert.InDelta(t, 28.6139, listings[0].Location.Lat, 1e-9)

	assert.Nil(t, listings[1].Location)
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFile("does-not-exist.tsv")
	_, err := p.Fetch(context.Background(), "seed")
	assert.Error(t, err)
}

func TestDisabledProvider(t *testing.T) {
	listings, err := Disabled{}.Fetch(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, listings)
}
