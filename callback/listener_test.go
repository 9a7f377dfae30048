package callback_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-github-dashboard/callback"
	"github.com/stretchr/testify/require"
)

func TestListener_ReceivesCode(t *testing.T) {
	l, err := callback.New("127.0.0.1:0", "/callback")
	require.NoError(t, err)

	go func() {
		resp, err := http.Get(l.URL() + "?code=c0de&state=abc")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cb, err := l.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "c0de", cb.Code)
	require.Equal(t, "abc", cb.State)
	require.True(t, cb.HasCode())
}

func TestListener_ProviderError(t *testing.T) {
	l, err := callback.New("127.0.0.1:0", "/callback")
	require.NoError(t, err)
	defer l.Close()

	resp, err := http.Get(l.URL() + "?error=access_denied&error_description=denied+by+user")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "access_denied: denied by user")

	cb, err := l.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access_denied", cb.Error)
}

func TestListener_IgnoresIncompleteRequests(t *testing.T) {
	l, err := callback.New("127.0.0.1:0", "/callback")
	require.NoError(t, err)

	resp, err := http.Get(l.URL() + "?code=only")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAddr(t *testing.T) {
	addr, path, err := callback.Addr("http://localhost:8085/callback")
	require.NoError(t, err)
	require.Equal(t, "localhost:8085", addr)
	require.Equal(t, "/callback", path)

	addr, path, err = callback.Addr("http://127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:80", addr)
	require.Equal(t, "/", path)

	_, _, err = callback.Addr("/relative")
	require.Error(t, err)
}
