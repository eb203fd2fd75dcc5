package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stelitsyn-sc/zappifest/internal/params"
)

func tokenParams() params.Params {
	return params.New(params.Field{Key: params.KeyAccessToken, Value: params.Text("secret")})
}

func TestClient_GetEncodesQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `[{"id": 1}]`)
	}))
	defer srv.Close()

	p := tokenParams().
		With("flag", params.Bool(true)).
		With("ids[]", params.List{"a", "b"}).
		With("upload", params.File{Filename: "x.png", Data: []byte("png")})

	out, err := New().Get(context.Background(), srv.URL+"/plugins.json?status=stable", p)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, http.MethodGet, gotMethod)
	require.Equal(t, []string{"secret"}, gotQuery["access_token"])
	require.Equal(t, []string{"stable"}, gotQuery["status"], "existing query must survive")
	require.Equal(t, []string{"true"}, gotQuery["flag"])
	require.Equal(t, []string{"a", "b"}, gotQuery["ids[]"])
	require.NotContains(t, gotQuery, "upload")
	require.Equal(t, []any{map[string]any{"id": float64(1)}}, out.Body)
}

func TestClient_PostEncodesMultipart(t *testing.T) {
	type part struct {
		name, filename, contentType, value string
	}
	var parts []part
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(p)
			parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
		}
		_, _ = io.WriteString(w, `{"id": "new-id"}`)
	}))
	defer srv.Close()

	p := tokenParams().
		With("plugin[name]", params.Text("Foo")).
		With("plugin[screen]", params.Bool(false)).
		With("plugin[whitelisted_account_ids][]", params.List{"a1", "a2"}).
		With("plugin[icon]", params.File{Filename: "icon.png", ContentType: "image/png", Data: []byte{1, 2, 3}})

	out, err := New().Post(context.Background(), srv.URL+"/plugins", p)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, map[string]any{"id": "new-id"}, out.Body)

	require.Equal(t, []part{
		{"access_token", "", "", "secret"},
		{"plugin[name]", "", "", "Foo"},
		{"plugin[screen]", "", "", "false"},
		{"plugin[whitelisted_account_ids][]", "", "", "a1"},
		{"plugin[whitelisted_account_ids][]", "", "", "a2"},
		{"plugin[icon]", "icon.png", "image/png", "\x01\x02\x03"},
	}, parts)
}

func TestClient_PutUsesMultipart(t *testing.T) {
	var contentType, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := New().Put(context.Background(), srv.URL+"/plugins/7", tokenParams())
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, method)
	require.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary=zappifest-"))
}

func TestClient_Classification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantIs   error
	}{
		{"ok json", http.StatusOK, `{"a":1}`, KindSuccess, nil},
		{"ok invalid json", http.StatusOK, `<html>`, KindParseError, nil},
		{"ok empty body", http.StatusOK, ``, KindParseError, nil},
		{"unauthorized", http.StatusUnauthorized, `{}`, KindUnauthorized, ErrUnauthorized},
		{"internal error", http.StatusInternalServerError, ``, KindServerError, ErrServerError},
		{"bad gateway", http.StatusBadGateway, ``, KindServerError, ErrServerError},
		{"created", http.StatusCreated, `{}`, KindOtherError, nil},
		{"not found", http.StatusNotFound, `{}`, KindOtherError, nil},
		{"unprocessable", http.StatusUnprocessableEntity, `{}`, KindOtherError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			out, err := New().Get(context.Background(), srv.URL, tokenParams())
			require.NoError(t, err, "HTTP failures are outcomes, not errors")
			require.Equal(t, tt.wantKind, out.Kind)
			require.Equal(t, tt.status, out.Code)
			require.Equal(t, []byte(tt.body), out.Raw)

			if tt.wantKind == KindSuccess {
				require.NoError(t, out.Err())
				return
			}
			require.Error(t, out.Err())
			if tt.wantIs != nil {
				require.ErrorIs(t, out.Err(), tt.wantIs)
			}
			if tt.wantKind == KindParseError {
				var pe *ParseError
				require.ErrorAs(t, out.Err(), &pe)
				require.Equal(t, []byte(tt.body), pe.Raw)
			}
			if tt.wantKind == KindOtherError {
				var he *HTTPError
				require.ErrorAs(t, out.Err(), &he)
				require.Equal(t, tt.status, he.Code)
				require.Equal(t, http.StatusText(tt.status), he.Message)
				require.NotErrorIs(t, out.Err(), ErrUnauthorized)
			}
		})
	}
}

func TestClient_NetworkErrorIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New().Get(context.Background(), url+"/users/current.json", tokenParams())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, http.MethodGet, netErr.Method)
	require.Equal(t, "/users/current.json", netErr.Path)
	require.NotContains(t, err.Error(), "secret", "token must not leak into errors")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(WithTimeout(50*time.Millisecond)).Get(context.Background(), srv.URL, tokenParams())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}

func TestClient_UnsupportedMethod(t *testing.T) {
	_, err := New().Do(context.Background(), http.MethodDelete, "http://localhost/x", tokenParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported method")
}

func TestNew_DefaultTimeout(t *testing.T) {
	c := New()
	require.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	require.Equal(t, 20*time.Second, DefaultTimeout)
}
