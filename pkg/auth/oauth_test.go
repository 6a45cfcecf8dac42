package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

type tokenServer struct {
	*httptest.Server
	calls  atomic.Int32
	fail   bool
	params atomic.Value
}

func newTokenServer(t *testing.T, fail bool) *tokenServer {
	ts := &tokenServer{fail: fail}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		assert.NoError(t, r.ParseForm())
		ts.params.Store(r.PostForm)
		if ts.fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-access","token_type":"Bearer","expires_in":3600,"refresh_token":"fresh-refresh"}`)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestStore(t *testing.T, tokenURL string) *Store {
	t.Helper()
	dir := t.TempDir()
	secrets := fmt.Sprintf(`{"installed":{"client_id":"cid","client_secret":"csecret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.example.com/auth","token_uri":%q}}`, tokenURL)
	credentials := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(credentials, []byte(secrets), 0600))

	s := NewStore(filepath.Join(dir, "cache", "token.json"), credentials, logging.Discard())
	s.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		t.Fatal("interactive authorization was not expected")
		return nil, nil
	}
	return s
}

func writeToken(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	require.NoError(t, saveToken(path, tok))
}

func readToken(t *testing.T, path string) *oauth2.Token {
	t.Helper()
	tok, err := tokenFromFile(path)
	require.NoError(t, err)
	return tok
}

func TestAcquire_ValidCachedToken(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	// Secrets are not needed when the cache is valid.
	s.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")

	cached := &oauth2.Token{AccessToken: "cached", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	writeToken(t, s.TokenFile, cached)

	tok, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
}

func TestAcquire_RefreshesExpiredToken(t *testing.T) {
	srv := newTokenServer(t, false)
	s := newTestStore(t, srv.URL)

	writeToken(t, s.TokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	tok, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.EqualValues(t, 1, srv.calls.Load())

	form := srv.params.Load().(url.Values)
	assert.Equal(t, "refresh_token", form.Get("grant_type"))

	assert.Equal(t, "fresh-access", readToken(t, s.TokenFile).AccessToken)
}

func TestAcquire_RefreshFailureFallsBackToAuthorization(t *testing.T) {
	srv := newTokenServer(t, true)
	s := newTestStore(t, srv.URL)

	writeToken(t, s.TokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var authorized int
	s.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		authorized++
		return &oauth2.Token{AccessToken: "interactive", RefreshToken: "new", Expiry: time.Now().Add(time.Hour)}, nil
	}

	tok, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interactive", tok.AccessToken)
	assert.Equal(t, 1, authorized)
	assert.Equal(t, "interactive", readToken(t, s.TokenFile).AccessToken)
}

func TestAcquire_ExpiredWithoutRefreshToken(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	writeToken(t, s.TokenFile, &oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour)})

	s.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "interactive"}, nil
	}

	tok, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interactive", tok.AccessToken)
}

func TestAcquire_CorruptCacheIsIgnored(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, os.MkdirAll(filepath.Dir(s.TokenFile), 0700))
	require.NoError(t, os.WriteFile(s.TokenFile, []byte("\x80\x04pickle"), 0600))

	s.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "interactive"}, nil
	}

	tok, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interactive", tok.AccessToken)
	assert.Equal(t, "interactive", readToken(t, s.TokenFile).AccessToken)
}

func TestAcquire_AuthorizationFailure(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	s.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return nil, errors.New("user closed the browser")
	}

	_, err := s.Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoCredential)
	_, statErr := os.Stat(s.TokenFile)
	assert.True(t, os.IsNotExist(statErr), "nothing should be cached on failure")
}

func TestAcquire_MissingSecrets(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	s.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := s.Acquire(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client secret")
}

// redirectingWriter plays the browser: it reads the consent URL the store
// prints and calls the loopback redirect with an authorization code.
type redirectingWriter struct {
	t       *testing.T
	authURL chan *url.URL
}

func (w *redirectingWriter) Write(p []byte) (int, error) {
	for _, field := range strings.Fields(string(p)) {
		if !strings.HasPrefix(field, "https://") {
			continue
		}
		u, err := url.Parse(field)
		require.NoError(w.t, err)
		w.authURL <- u

		q := u.Query()
		callback := q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state"))
		go func() {
			resp, err := http.Get(callback)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	return len(p), nil
}

func TestTokenFromWeb(t *testing.T) {
	srv := newTokenServer(t, false)
	s := newTestStore(t, srv.URL)
	s.authorize = s.tokenFromWeb

	w := &redirectingWriter{t: t, authURL: make(chan *url.URL, 1)}
	s.Out = w

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := s.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)

	u := <-w.authURL
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.True(t, strings.HasPrefix(q.Get("redirect_uri"), "http://127.0.0.1:"))

	form := srv.params.Load().(url.Values)
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "the-code", form.Get("code"))

	var saved map[string]any
	data, err := os.ReadFile(s.TokenFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "fresh-refresh", saved["refresh_token"])
}

func TestTokenFromWeb_ContextCanceled(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	s.Out = &strings.Builder{}
	conf, err := s.OAuthConfig()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.tokenFromWeb(ctx, conf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	writeToken(t, s.TokenFile, &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)})

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer api.Close()

	client, err := s.Client(context.Background())
	require.NoError(t, err)
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer cached", gotAuth)
}

func TestReset(t *testing.T) {
	s := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, s.Reset(), "missing cache is not an error")

	writeToken(t, s.TokenFile, &oauth2.Token{AccessToken: "x"})
	require.NoError(t, s.Reset())
	_, err := os.Stat(s.TokenFile)
	assert.True(t, os.IsNotExist(err))
}
