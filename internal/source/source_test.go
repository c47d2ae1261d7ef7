package source

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/cache"
	"github.com/Checker-Finance/refdata/internal/flatten"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

const fixture = "../flatten/testdata/FULINS_D_20240105_1of1.xml"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	return data
}

func zipped(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseSource(t *testing.T) {
	s := Parse("https://registers.example.eu/files/FULNCR_20240106_D_1of1.zip?sig=1")
	assert.True(t, s.Remote())
	assert.Equal(t, flatten.FamilyTransparency, s.Family)
	assert.Equal(t, "FULNCR_20240106_D_1of1.zip", Name(s.Location))

	local := Parse("/data/FULINS_D_20240105_1of1.xml")
	assert.False(t, local.Remote())
	assert.Equal(t, flatten.FamilyReference, local.Family)
}

func TestLoader_LocalFileIsCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FULINS_D_20240105_1of1.xml")
	require.NoError(t, os.WriteFile(path, readFixture(t), 0o644))

	c := cache.NewMemoryCache(time.Hour)
	l := NewLoader(nil, nil, c, zap.NewNop())

	doc, err := l.Load(context.Background(), Parse(path))
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, 1, c.Len())

	require.NoError(t, os.Remove(path))

	again, err := l.Load(context.Background(), Parse(path))
	require.NoError(t, err, "served from cache once the source is gone")
	assert.Equal(t, doc.Columns, again.Columns)
	assert.Equal(t, doc.Records, again.Records)
	assert.Equal(t, "FULINS_D_20240105_1of1.xml", again.Source)
}

func TestLoader_LocalZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FULINS_D_20240105_1of1.zip")
	require.NoError(t, os.WriteFile(path, zipped(t, map[string][]byte{"FULINS_D_20240105_1of1.xml": readFixture(t)}), 0o644))

	doc, err := NewLoader(nil, nil, nil, nil).Load(context.Background(), Parse(path))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Len())
}

func TestLoader_RemoteZip(t *testing.T) {
	var hits atomic.Int32
	payload := zipped(t, map[string][]byte{"FULINS_D_20240105_1of1.xml": readFixture(t)})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(FetcherConfig{}, nil, nil), nil, cache.NewMemoryCache(time.Hour), nil)
	src := Parse(srv.URL + "/FULINS_D_20240105_1of1.zip")

	for i := 0; i < 2; i++ {
		doc, err := l.Load(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.Len())
	}
	assert.EqualValues(t, 1, hits.Load())
}

func TestLoader_ServesStaleWhenDownloadFails(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(readFixture(t))
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(FetcherConfig{RetryMax: 0}, nil, nil), nil, cache.NewMemoryCache(time.Nanosecond), nil)
	src := Parse(srv.URL + "/FULINS_D_20240105_1of1.xml")

	_, err := l.Load(context.Background(), src)
	require.NoError(t, err)

	fail.Store(true)
	time.Sleep(time.Millisecond)

	doc, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Len())
}

func TestLoader_DownloadFailureWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(FetcherConfig{RetryMax: 1}, nil, nil), nil, nil, nil)
	_, err := l.Load(context.Background(), Parse(srv.URL+"/FULINS_D_20240105_1of1.xml"))
	require.Error(t, err)

	var ext *errs.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, ServiceName, ext.Service)
	assert.Equal(t, 2, ext.Attempts)
}

func TestFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(FetcherConfig{}, nil, nil).Fetch(context.Background(), srv.URL+"/missing.zip")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Contains(t, err.Error(), "missing.zip")
}

func TestLoader_MissingLocalFile(t *testing.T) {
	_, err := NewLoader(nil, nil, nil, nil).Load(context.Background(), Parse(filepath.Join(t.TempDir(), "nope.xml")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnzip_NoXMLEntry(t *testing.T) {
	_, err := Unzip(zipped(t, map[string][]byte{"README.txt": []byte("hi")}), "a.zip")
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "a.zip", pe.Source)
}

func TestUnzip_NotAnArchive(t *testing.T) {
	_, err := Unzip([]byte("not a zip"), "b.zip")
	var pe *errs.ParseError
	assert.ErrorAs(t, err, &pe)
}
