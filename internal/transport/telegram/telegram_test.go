package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var form map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("123:abc", WithBaseURL(srv.URL))
	require.NoError(t, c.SendText(context.Background(), "42", "<b>hi</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", form["chat_id"])
	assert.Equal(t, "<b>hi</b>", form["text"])
	assert.Equal(t, "HTML", form["parse_mode"])
}

func TestSendPhoto(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{"photo": r.PostForm.Get("photo"), "caption": r.PostForm.Get("caption")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("t", WithBaseURL(srv.URL))
	require.NoError(t, c.SendPhoto(context.Background(), "42", "https://example.com/a.jpg", "cap"))
	assert.Equal(t, "https://example.com/a.jpg", form["photo"])
	assert.Equal(t, "cap", form["caption"])
}

func TestRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := New("t", WithBaseURL(srv.URL)).SendText(context.Background(), "42", "x")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTransportErrorRedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New("secret-token", WithBaseURL(url)).SendText(context.Background(), "42", "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := New("secret-token", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond)).
		SendText(context.Background(), "42", "x")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotContains(t, err.Error(), "secret-token")
}
