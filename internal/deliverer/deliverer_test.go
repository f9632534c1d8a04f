package deliverer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPDeliverer_Deliver(t *testing.T) {
	var (
		gotMethod string
		gotBody   string
		gotHeader string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Signature")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	d := NewHTTPDeliverer(time.Second)
	res := d.Deliver(context.Background(), &Request{
		URL:     server.URL,
		Method:  http.MethodPut,
		Payload: []byte(`{"a":1}`),
		Headers: map[string]string{"X-Signature": "abc"},
	})

	require.NoError(t, res.Error)
	assert.True(t, res.Is2xx())
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(res.ResponseBody))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "PUT "+server.URL+" 202", res.String())
}

func TestHTTPDeliverer_DefaultsToPost(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer server.Close()

	res := NewHTTPDeliverer(time.Second).Deliver(context.Background(), &Request{URL: server.URL, Payload: []byte(`{}`)})

	require.NoError(t, res.Error)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestHTTPDeliverer_GetHasNoBody(t *testing.T) {
	var bodyLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodyLen = len(b)
	}))
	defer server.Close()

	res := NewHTTPDeliverer(time.Second).Deliver(context.Background(), &Request{
		URL:     server.URL,
		Method:  http.MethodGet,
		Payload: []byte(`{"ignored":true}`),
	})

	require.NoError(t, res.Error)
	assert.Zero(t, bodyLen)
}

func TestHTTPDeliverer_ContentType(t *testing.T) {
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()

	d := NewHTTPDeliverer(time.Second)

	t.Run("GET without body", func(t *testing.T) {
		res := d.Deliver(context.Background(), &Request{URL: server.URL, Method: http.MethodGet})
		require.NoError(t, res.Error)
		assert.Empty(t, contentType)
	})

	t.Run("POST with body", func(t *testing.T) {
		res := d.Deliver(context.Background(), &Request{URL: server.URL, Payload: []byte(`{"a":1}`)})
		require.NoError(t, res.Error)
		assert.Equal(t, DefaultContentType, contentType)
	})

	t.Run("Header overrides default", func(t *testing.T) {
		res := d.Deliver(context.Background(), &Request{
			URL:     server.URL,
			Payload: []byte(`a=1`),
			Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		})
		require.NoError(t, res.Error)
		assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	})
}

func TestHTTPDeliverer_Latency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
	}))
	defer server.Close()

	res := NewHTTPDeliverer(time.Second).Deliver(context.Background(), &Request{URL: server.URL})

	require.NoError(t, res.Error)
	assert.GreaterOrEqual(t, res.Latency, 20*time.Millisecond)
}

func TestHTTPDeliverer_Non2xxIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kapot", http.StatusInternalServerError)
	}))
	defer server.Close()

	res := NewHTTPDeliverer(time.Second).Deliver(context.Background(), &Request{URL: server.URL})

	assert.NoError(t, res.Error)
	assert.False(t, res.Is2xx())
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, string(res.ResponseBody), "kapot")
}

func TestHTTPDeliverer_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	res := NewHTTPDeliverer(time.Second).Deliver(context.Background(), &Request{
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})

	assert.Error(t, res.Error)
}
