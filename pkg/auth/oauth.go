package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

// authTimeout bounds how long the interactive flow waits for the browser redirect.
const authTimeout = 5 * time.Minute

// ErrNoCredential is returned when neither the cache, a refresh nor the
// interactive flow produced a token.
var ErrNoCredential = errors.New("no usable credential")

// Store keeps the calendar OAuth token in a local file and renews it when
// it can no longer be used.
type Store struct {
	TokenFile       string
	CredentialsFile string
	Scopes          []string

	// Out receives the consent URL during interactive authorization.
	Out    io.Writer
	Logger *slog.Logger

	authorize func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// NewStore returns a Store asking for read-only calendar access.
func NewStore(tokenFile, credentialsFile string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		TokenFile:       tokenFile,
		CredentialsFile: credentialsFile,
		Scopes:          []string{calendar.CalendarReadonlyScope},
		Out:             os.Stdout,
		Logger:          logger,
	}
	s.authorize = s.tokenFromWeb
	return s
}

// OAuthConfig creates an oauth2.Config from the client secrets file.
func (s *Store) OAuthConfig() (*oauth2.Config, error) {
	b, err := os.ReadFile(s.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", s.CredentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(b, s.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	return conf, nil
}

// Acquire returns a usable token. A valid cached token is returned as is.
// An expired one is refreshed once; if that fails, or nothing is cached,
// the interactive flow runs. Any newly obtained token is written to the
// cache file before it is returned.
func (s *Store) Acquire(ctx context.Context) (*oauth2.Token, error) {
	tok, err := tokenFromFile(s.TokenFile)
	if err != nil {
		s.Logger.Debug("no cached token", logging.Path(s.TokenFile), logging.Err(err))
		tok = nil
	}
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	conf, err := s.OAuthConfig()
	if err != nil {
		return nil, err
	}

	if tok != nil && tok.RefreshToken != "" {
		fresh, err := conf.TokenSource(ctx, tok).Token()
		if err != nil {
			s.Logger.Warn("token refresh failed, starting authorization", logging.Err(err))
			tok = nil
		} else {
			tok = fresh
		}
	} else {
		tok = nil
	}

	if tok == nil {
		s.Logger.Info("initiating web authorization flow", logging.Path(s.TokenFile))
		tok, err = s.authorize(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCredential, err)
		}
	}

	if err := saveToken(s.TokenFile, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Client returns an HTTP client authorized with the acquired token.
func (s *Store) Client(ctx context.Context) (*http.Client, error) {
	tok, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := s.OAuthConfig()
	if err != nil {
		s.Logger.Warn("client secrets unavailable, token will not be refreshed", logging.Err(err))
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
	}
	return conf.Client(ctx, tok), nil
}

// Reset deletes the token cache so the next Acquire starts the interactive flow.
func (s *Store) Reset() error {
	err := os.Remove(s.TokenFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file %s: %w", s.TokenFile, err)
	}
	return nil
}

// tokenFromWeb runs the authorization code flow with a loopback redirect on
// an OS-chosen port.
func (s *Store) tokenFromWeb(ctx context.Context, base *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer listener.Close()

	conf := *base
	conf.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "State mismatch", http.StatusBadRequest)
				return
			}
			if e := q.Get("error"); e != "" {
				http.Error(w, "Authorization denied", http.StatusBadRequest)
				sendErr(errCh, fmt.Errorf("authorization denied: %s", e))
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				sendErr(errCh, fmt.Errorf("authorization code not found in redirect URL"))
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			sendErr(errCh, fmt.Errorf("HTTP server error: %w", err))
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(s.Out, "Please open the following URL in your browser to authorize access to your calendar:\n%s\n", authURL)
	s.Logger.Info("waiting for authorization code", slog.String("redirect", conf.RedirectURL))

	timer := time.NewTimer(authTimeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := conf.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken overwrites the cache file with token.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}
