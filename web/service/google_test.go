package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mhsanaei/taskpanel/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleStub(t *testing.T, userinfo string) *GoogleService {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.GoogleOAuthConfig{ClientID: "id", ClientSecret: "secret", CallbackURL: "http://localhost:3000/auth/google/callback"}
	endpoint := oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	return NewGoogleServiceWithEndpoint(cfg, endpoint, srv.URL+"/userinfo")
}

func TestGoogleService_AuthCodeURL(t *testing.T) {
	g := newGoogleStub(t, `{}`)
	assert.True(t, g.Enabled())

	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "id", q.Get("client_id"))
	assert.Equal(t, "profile email", q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/google/callback", q.Get("redirect_uri"))
}

func TestGoogleService_Disabled(t *testing.T) {
	g := NewGoogleService(config.GoogleOAuthConfig{})
	assert.False(t, g.Enabled())
}

func TestGoogleService_Identify(t *testing.T) {
	g := newGoogleStub(t, `{"email":"gina@gmail.com","verified_email":true,"name":"Gina"}`)

	id, err := g.Identify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gina@gmail.com", id.Email)
	assert.Equal(t, "Gina", id.Name)

	_, err = g.Identify(context.Background(), "bad-code")
	assert.Error(t, err)

	_, err = g.Identify(context.Background(), "")
	assert.Error(t, err)
}

func TestGoogleService_Identify_NameFallback(t *testing.T) {
	g := newGoogleStub(t, `{"email":"gina@gmail.com","verified_email":true}`)

	id, err := g.Identify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gina@gmail.com", id.Name)
}

func TestGoogleService_Identify_UnverifiedEmail(t *testing.T) {
	g := newGoogleStub(t, `{"email":"gina@gmail.com","verified_email":false,"name":"Gina"}`)

	_, err := g.Identify(context.Background(), "good-code")
	assert.Error(t, err)
}
