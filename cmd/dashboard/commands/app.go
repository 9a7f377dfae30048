package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-github-dashboard/callback"
	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/config"
	"github.com/jrsteele09/go-github-dashboard/internal/logging"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/selection"
	"github.com/jrsteele09/go-github-dashboard/session"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/jrsteele09/go-github-dashboard/tokenstore"
	"github.com/rs/zerolog/log"
)

const logFile = "dashboard.log"

// app holds the wired dashboard for one command invocation.
type app struct {
	cfg     config.Config
	session *session.Controller
	closers []func() error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	folder := cfg.GetDataFolder()
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("create data folder %s: %w", folder, err)
	}
	f, err := os.OpenFile(filepath.Join(folder, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(f, cfg.GetLogLevel(), cfg.GetEnv())

	store, closeStore, err := storage.Open(ctx, cfg, folder)
	if err != nil {
		f.Close()
		return nil, err
	}

	client := github.NewClient(github.WithEndpoint(cfg.GetGraphQLURL()))
	proxyClient := github.NewProxyClient(cfg.GetProxyBaseURL(), &http.Client{Timeout: cfg.GetRequestTimeout()})

	controller := session.New(session.Deps{
		Tokens:        tokenstore.New(store),
		Selections:    selection.New(store),
		Store:         store,
		Authenticator: proxyClient,
		GitHub:        client,
	}, session.Options{
		ClientID:     cfg.GetClientID(),
		RedirectURI:  cfg.GetRedirectURI(),
		AuthorizeURL: cfg.GetAuthorizeURL(),
		Timeout:      cfg.GetRequestTimeout(),
	})

	log.Info().Str("backend", cfg.GetStorageBackend()).Str("proxy", cfg.GetProxyBaseURL()).Msg("dashboard started")
	return &app{
		cfg:     cfg,
		session: controller,
		closers: []func() error{closeStore, f.Close},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
}

// startLogin opens the redirect listener for the configured redirect URI.
func (a *app) startLogin() (*callback.Listener, error) {
	addr, path, err := callback.Addr(a.cfg.GetRedirectURI())
	if err != nil {
		return nil, err
	}
	l, err := callback.New(addr, path)
	if err != nil {
		return nil, err
	}
	l.AppName = a.cfg.GetAppName()
	return l, nil
}

// waitForLogin serves one redirect and returns its parameters.
func (a *app) waitForLogin(ctx context.Context) (oauth2.Callback, error) {
	l, err := a.startLogin()
	if err != nil {
		return oauth2.Callback{}, err
	}
	return l.Wait(ctx)
}

// alertError turns a session alert into a command error.
func alertError(snap session.Snapshot) error {
	if snap.Alert != "" {
		return fmt.Errorf("%s", snap.Alert)
	}
	return nil
}
