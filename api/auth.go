package api

import (
	"context"

	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/model"
)

const (
	loginPath  = "/api/token/"
	logoutPath = "/api/token/logout/"
	mePath     = "/api/v1/users/me/"
)

var ErrInvalidCredentials = errors.Unauthorized("invalid username or password")

// Auth starts and ends sessions.
type Auth struct {
	*base
}

// Login exchanges credentials for a token pair and starts the session.
// When the token response carries no user, it is fetched from the profile endpoint.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	if err := a.check(ctx, &creds); err != nil {
		return nil, err
	}
	sess := a.client.Session()
	// a stale session must not turn a login 401 into a refresh
	if err := sess.Clear(ctx); err != nil {
		return nil, err
	}

	var resp model.LoginResponse
	if _, err := a.client.Post(loginPath, creds, client.WithContext(ctx), client.WithResponse(&resp)); err != nil {
		if errors.IsUnauthorized(err) {
			return nil, ErrInvalidCredentials.WithCause(err)
		}
		return nil, err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, errors.BadGateway("token response is missing tokens")
	}
	if err := sess.Start(ctx, resp.Access, resp.Refresh, resp.User); err != nil {
		return nil, err
	}
	if resp.User != nil {
		return resp.User, nil
	}
	u, err := a.Me(ctx)
	if err != nil {
		if cerr := sess.Clear(context.WithoutCancel(ctx)); cerr != nil {
			a.logger.Warn().Err(cerr).Msg("failed to clear session after login")
		}
		return nil, err
	}
	return u, nil
}

// Logout revokes the refresh token upstream on a best effort basis and
// always clears the local session.
func (a *Auth) Logout(ctx context.Context) error {
	sess := a.client.Session()
	if refresh, ok := sess.RefreshToken(ctx); ok {
		body := map[string]string{"refresh": refresh}
		if _, err := a.client.Post(logoutPath, body, client.WithContext(ctx)); err != nil {
			a.logger.Warn().Err(err).Msg("upstream logout failed, clearing session anyway")
		}
	}
	return sess.Clear(ctx)
}

// Me fetches the current user and refreshes the cached copy.
func (a *Auth) Me(ctx context.Context) (*model.User, error) {
	u, err := fetch[model.User](ctx, a.base, mePath, nil)
	if err != nil {
		return nil, err
	}
	if err := a.client.Session().SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CurrentUser returns the cached user, fetching it when absent.
func (a *Auth) CurrentUser(ctx context.Context) (*model.User, error) {
	sess := a.client.Session()
	if u, ok := sess.User(ctx); ok {
		return u, nil
	}
	if _, ok := sess.AccessToken(ctx); !ok {
		return nil, errors.Unauthorized("not logged in")
	}
	return a.Me(ctx)
}
