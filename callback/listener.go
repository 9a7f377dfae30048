// Package callback receives the OAuth redirect on a local one-shot HTTP listener.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/rs/zerolog/log"
)

const pageTemplate = "callback.html"

type page struct {
	AppName     string
	Error       string
	Description string
}

// Listener serves a single OAuth redirect.
type Listener struct {
	AppName string

	path     string
	listener net.Listener
	server   *http.Server
	tmpl     *template.Template
	result   chan oauth2.Callback
	once     sync.Once
}

// New binds addr and serves the redirect at path.
func New(addr, path string) (*Listener, error) {
	tmpl, err := ParseTemplate(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("[Callback New] parse template: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("[Callback New] listen on %s: %w", addr, err)
	}
	if path == "" {
		path = "/"
	}

	l := &Listener{
		AppName:  "GitHub Dashboard",
		path:     path,
		listener: ln,
		tmpl:     tmpl,
		result:   make(chan oauth2.Callback, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path, l.handle)
	l.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("callback listener stopped")
		}
	}()
	return l, nil
}

// URL is the redirect URI served by the listener.
func (l *Listener) URL() string {
	return (&url.URL{Scheme: "http", Host: l.listener.Addr().String(), Path: l.path}).String()
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cb := oauth2.Callback{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
	if cb.Error == "" && !cb.HasCode() {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := l.tmpl.Execute(w, page{AppName: l.AppName, Error: cb.Error, Description: cb.ErrorDescription}); err != nil {
		log.Error().Err(err).Msg("render callback page")
	}

	l.once.Do(func() {
		l.result <- cb
	})
}

// Wait blocks until the redirect arrives or ctx is done, then stops the listener.
func (l *Listener) Wait(ctx context.Context) (oauth2.Callback, error) {
	defer l.Close()

	select {
	case cb := <-l.result:
		return cb, nil
	case <-ctx.Done():
		return oauth2.Callback{}, fmt.Errorf("[Callback Wait]: %w", ctx.Err())
	}
}

// Close stops the listener.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

// Listen serves one redirect on addr at path and returns its parameters.
func Listen(ctx context.Context, addr, path string) (oauth2.Callback, error) {
	l, err := New(addr, path)
	if err != nil {
		return oauth2.Callback{}, err
	}
	return l.Wait(ctx)
}

// Addr derives the listen address and path from a redirect URI such as
// http://localhost:8085/callback.
func Addr(redirectURI string) (addr, path string, err error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("[Callback Addr] parse %q: %w", redirectURI, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("[Callback Addr] %q has no host", redirectURI)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return host, path, nil
}
