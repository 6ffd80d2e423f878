package psa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cert/GetByCertNumber/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/404") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"PSACert":{"CertNumber":"110975567","CardGrade":"GEM MT 10","LabelType":"Standard","TotalPopulation":120,"PopulationHigher":0}}`))
	})
	mux.HandleFunc("/cert/GetImagesByCertNumber/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"IsFrontImage":true,"ImageURL":"http://img/front"},{"IsFrontImage":false,"ImageURL":"http://img/back"}]`))
	})
	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(strings.Repeat("x", 2048)))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: srv.URL + "/cert/", Token: "secret"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestGetCertDetails(t *testing.T) {
	c := newTestClient(t, newTestServer(t))

	details, err := c.GetCertDetails(context.Background(), "110975567")
	require.NoError(t, err)
	assert.Equal(t, "Standard", details.LabelType)
	require.NotNil(t, details.TotalPopulation)
	assert.Equal(t, 120, *details.TotalPopulation)
	require.NotNil(t, details.PopulationHigher)
	assert.Equal(t, 0, *details.PopulationHigher)

	_, err = c.GetCertDetails(context.Background(), "404")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestGetCertImagesAndDownload(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)

	images, err := c.GetCertImages(context.Background(), "110975567")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsFrontImage)
	assert.Equal(t, "http://img/back", images[1].ImageURL)

	body, err := c.DownloadImage(context.Background(), srv.URL+"/image.jpg")
	require.NoError(t, err)
	assert.Len(t, body, 2048)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(Config{Token: "  "}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadToken(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "oauthtoken")

	token, err := LoadToken(" configured ", file)
	require.NoError(t, err)
	assert.Equal(t, "configured", token)

	_, err = LoadToken("", file)
	assert.ErrorIs(t, err, ErrMissingToken)

	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))
	token, err = LoadToken("", file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", token)
}

func TestCertNumberIsEscaped(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv)

	_, err := c.GetCertDetails(context.Background(), "1/../x?y=2")
	require.Error(t, err)
	assert.Equal(t, "/cert/GetByCertNumber/1/../x?y=2", gotPath)
	assert.Empty(t, gotQuery)

	_, err = c.GetCertImages(context.Background(), "7#frag")
	require.Error(t, err)
	assert.Equal(t, "/cert/GetImagesByCertNumber/7#frag", gotPath)
}
