package entropy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeeded_Reproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestNewClient_EmptyKeyDisabled(t *testing.T) {
	c := NewClient("")
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	f := c.Float()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}

func TestNewSeed_WithoutClient(t *testing.T) {
	seed, err := NewSeed(nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seed, int64(0))
}

func TestClient_UsesPoolFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := "0.25"
		for i := 0; i < 19; i++ {
			data += ",0.5"
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","result":{"random":{"data":[%s]}},"id":1}`, data)
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.endpoint = srv.URL

	assert.True(t, c.Enabled())
	assert.Equal(t, 0.25, c.Float())

	seed, err := NewSeed(c)
	require.NoError(t, err)
	assert.Equal(t, int64(0.5*float64(1<<62)), seed)
}

func TestClient_FallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","error":{"message":"quota exceeded"},"id":1}`)
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.endpoint = srv.URL

	f := c.Float()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}
