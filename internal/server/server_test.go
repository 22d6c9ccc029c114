package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/wav"
)

func newTestServer(t *testing.T, maxUpload int64) *Server {
	t.Helper()

	cache, err := NewRenderCache(4)
	require.NoError(t, err)

	p := binaural.NewPipeline(wav.Decoder{}, nil, wav.NewEncoder())

	return New(p, cache, zaptest.NewLogger(t), Options{DefaultBand: "alpha", MaxUploadBytes: maxUpload})
}

func silentWAV(t *testing.T, frames int) []byte {
	t.Helper()

	data, err := wav.Encode(buffer.New(44100, 2, frames))
	require.NoError(t, err)

	return data
}

func post(s http.Handler, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	return rec
}

func TestRenderServesWAV(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1<<20)
	src := silentWAV(t, 100)

	rec := post(s, RenderPath+"?band=theta", src)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), OutputFilename)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, src, rec.Body.Bytes())

	rec = post(s, RenderPath+"?band=theta", src)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))
	assert.Equal(t, src, rec.Body.Bytes())

	rec = post(s, RenderPath+"?band=beta", src)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"), "band is part of the key")
}

func TestRenderDefaultBand(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1<<20)
	src := silentWAV(t, 10)

	rec := post(s, RenderPath, src)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := s.cache.Get(CacheKey(src, "alpha"))
	assert.True(t, ok)
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 200)

	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		want   int
	}{
		{"unknown band", http.MethodPost, RenderPath + "?band=gamma", silentWAV(t, 10), http.StatusBadRequest},
		{"not a wav", http.MethodPost, RenderPath + "?band=alpha", []byte("definitely not riff data"), http.StatusUnsupportedMediaType},
		{"too large", http.MethodPost, RenderPath + "?band=alpha", silentWAV(t, 1000), http.StatusRequestEntityTooLarge},
		{"wrong method", http.MethodGet, RenderPath, nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBands(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BandsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []bandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "delta", got[0].Name)
	assert.InDelta(t, 10.0, got[2].CenterHz, 1e-12)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, BandsPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	a := CacheKey([]byte("x"), "alpha")
	assert.Equal(t, a, CacheKey([]byte("x"), "alpha"))
	assert.NotEqual(t, a, CacheKey([]byte("y"), "alpha"))
	assert.NotEqual(t, a, CacheKey([]byte("x"), "beta"))

	_, err := NewRenderCache(0)
	assert.Error(t, err)
}
