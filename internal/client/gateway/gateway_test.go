package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Message string `json:"message"`
}

func TestFetchJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/hello", r.URL.Path)
		w.Write([]byte(`{"message":"Hello, World!"}`))
	}))
	defer srv.Close()

	res := FetchJSON[greeting](context.Background(), New(srv.URL, ""), "/api/v1/hello")
	require.True(t, res.OK)
	assert.Equal(t, "Hello, World!", res.Data.Message)
	assert.Empty(t, res.Err)
}

func TestFetchJSONDetailSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"File type '.exe' not allowed"}`))
	}))
	defer srv.Close()

	res := FetchJSON[greeting](context.Background(), New(srv.URL, ""), "/x")
	require.False(t, res.OK)
	assert.Equal(t, "File type '.exe' not allowed", res.Err)
}

func TestFetchJSONNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	res := FetchJSON[greeting](context.Background(), New(srv.URL, ""), "/x")
	require.False(t, res.OK)
	assert.Equal(t, "HTTP 502: Bad Gateway", res.Err)
}

func TestFetchJSONTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	res := FetchJSON[greeting](context.Background(), New(srv.URL, ""), "/x")
	require.False(t, res.OK)
	assert.NotEmpty(t, res.Err)
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	FetchJSON[greeting](context.Background(), New(srv.URL, "sekret"), "/x")
	assert.Equal(t, "Bearer sekret", gotAuth)

	FetchJSON[greeting](context.Background(), New(srv.URL, ""), "/x")
	assert.Empty(t, gotAuth)
}

func TestPostJSONSendsBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	res := PostJSON[greeting](context.Background(), New(srv.URL, ""), "/x", map[string]string{"text": "hi"})
	require.True(t, res.OK)
	assert.JSONEq(t, `{"text":"hi"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestUploadFileMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "content", string(b))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res := UploadFile[greeting](context.Background(), New(srv.URL, ""), "/x", "report.pdf", []byte("content"))
	assert.True(t, res.OK)
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"deleted"}`))
	}))
	defer srv.Close()

	res := New(srv.URL, "").Delete(context.Background(), "/api/v1/documents/x.pdf")
	require.True(t, res.OK)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/documents/x.pdf", gotPath)
}
