// Package calendar syncs committed bookings to the owner's Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// Authorizer runs the owner's OAuth2 consent flow and hands out
// authenticated clients afterwards.
type Authorizer struct {
	conf  *oauth2.Config
	store TokenStore
}

func NewAuthorizer(clientID, clientSecret, redirectURL string, store TokenStore) *Authorizer {
	return &Authorizer{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		},
		store: store,
	}
}

// Configured reports whether client credentials are present.
func (a *Authorizer) Configured() bool {
	return a != nil && a.conf.ClientID != "" && a.conf.ClientSecret != ""
}

// AuthURL returns the consent page URL. Offline access and a forced prompt
// make Google issue a refresh token every time.
func (a *Authorizer) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange swaps an authorization code for a token and stores it.
func (a *Authorizer) Exchange(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("calendar: no authorization code provided")
	}
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("calendar: exchange code: %w", err)
	}
	return a.store.Save(ctx, tok)
}

// Client returns an HTTP client authorized as the owner. A refreshed token is
// written back so the next call does not refresh again.
func (a *Authorizer) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := a.conf.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("calendar: refresh token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := a.store.Save(ctx, fresh); err != nil {
			return nil, err
		}
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(fresh)), nil
}
