package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfinder/backend/internal/domain"
)

// testClient returns a client with the rate limiter opened up so tests never
// stall on it.
func testClient(overrides ClientConfig) *Client {
	cfg := overrides
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 1000
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 1000
	}
	return NewClient(cfg)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.Equal(t, 8*time.Second, client.probeTimeout)
	assert.Equal(t, 12*time.Second, client.embedTimeout)
	assert.Equal(t, int64(defaultMaxBodyBytes), client.maxBodyBytes)
}

func TestFetchPage_Success(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>product page</body></html>"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "", 5*time.Second)

	require.True(t, res.OK())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, server.URL, res.FinalURL)
	assert.Contains(t, string(res.Body), "product page")
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchPage_SendsReferer(t *testing.T) {
	var gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "https://duckduckgo.com/", 5*time.Second)

	require.True(t, res.OK())
	assert.Equal(t, "https://duckduckgo.com/", gotReferer)
}

func TestFetchPage_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>moved here</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL+"/old", "", 5*time.Second)

	require.True(t, res.OK())
	assert.True(t, strings.HasSuffix(res.FinalURL, "/new"), "FinalURL = %s, want .../new", res.FinalURL)
}

func TestFetchPage_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "", 5*time.Second)

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchBadStatus, res.Outcome)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFetchPage_WrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "html"}`))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "", 5*time.Second)

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchWrongContentType, res.Outcome)
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "", 2*time.Second)

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchNetworkError, res.Outcome)
}

func TestFetchPage_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.FetchPage(context.Background(), server.URL, "", 50*time.Millisecond)

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchNetworkError, res.Outcome)
}

func TestFetchPage_CapsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		for i := 0; i < 100; i++ {
			w.Write([]byte("0123456789"))
		}
	}))
	defer server.Close()

	client := testClient(ClientConfig{MaxBodyBytes: 100})
	res := client.FetchPage(context.Background(), server.URL, "", 5*time.Second)

	require.True(t, res.OK())
	assert.Len(t, res.Body, 100)
}

func TestProbeImage_HeadSucceeds(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.ProbeImage(context.Background(), server.URL, "")

	require.True(t, res.OK())
	assert.Equal(t, []string{http.MethodHead}, methods)
}

func TestProbeImage_FallsBackToGet(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.ProbeImage(context.Background(), server.URL, "")

	require.True(t, res.OK())
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestProbeImage_NotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.ProbeImage(context.Background(), server.URL, "")

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchWrongContentType, res.Outcome)
}

func TestProbeImage_SendsImageAccept(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "image/webp")
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.ProbeImage(context.Background(), server.URL, "")

	require.True(t, res.OK())
	assert.Contains(t, gotAccept, "image/webp")
}

func TestDownloadImage_Success(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.DownloadImage(context.Background(), server.URL, "")

	require.True(t, res.OK())
	assert.Equal(t, payload, res.Body)
	assert.Equal(t, "image/png", res.ContentType)
}

func TestDownloadImage_WrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>error page</html>"))
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.DownloadImage(context.Background(), server.URL, "")

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchWrongContentType, res.Outcome)
	assert.Empty(t, res.Body)
}

func TestDownloadImage_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := testClient(ClientConfig{})
	res := client.DownloadImage(context.Background(), server.URL, "")

	assert.False(t, res.OK())
	assert.Equal(t, domain.FetchBadStatus, res.Outcome)
}
