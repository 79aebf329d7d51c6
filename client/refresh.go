package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/model"
)

// do drives one attempt through its states:
//
//	send -> non-401                       -> done
//	send -> 401, already retried          -> clear session, fail
//	send -> 401, no refresh token         -> fail with the 401
//	send -> 401 -> refresh ok  -> resend once
//	send -> 401 -> refresh err -> clear session, fail
func (c *Client) do(a *attempt) (*http.Response, []byte, error) {
	token, _ := c.session.AccessToken(a.ctx)
	for {
		resp, data, err := c.send(a, token)
		if err != nil {
			return nil, nil, errors.Wrap(err, http.StatusBadGateway, "upstream request failed")
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, data, nil
		}

		if a.retried() {
			c.logger.Warn().Str("method", a.method).Str("url", a.url).Msg("retried request rejected, ending session")
			c.endSession(a.ctx)
			return resp, data, ErrSessionExpired.WithCause(errors.FromResponse(resp.StatusCode, data))
		}

		refresh, ok := c.session.RefreshToken(a.ctx)
		if !ok {
			return resp, data, nil
		}
		a.retries++

		fresh, err := c.refresh(a.ctx, token, refresh)
		if err != nil {
			if ctxErr := a.ctx.Err(); ctxErr != nil {
				// caller gave up, the session itself may still be fine
				return resp, data, errors.Wrap(ctxErr, http.StatusRequestTimeout, "request canceled during token refresh")
			}
			c.logger.Warn().Err(err).Msg("token refresh failed, ending session")
			c.endSession(a.ctx)
			return resp, data, ErrSessionExpired.WithCause(err)
		}
		token = fresh
	}
}

// refresh obtains a new access token, stores it in the session and returns it.
// sent is the access token the rejected request carried.
func (c *Client) refresh(ctx context.Context, sent, refreshToken string) (string, error) {
	if c.group == nil {
		pair, err := c.requestRefresh(ctx, refreshToken)
		if err != nil {
			c.metrics.observeRefresh(RefreshFailure)
			return "", err
		}
		c.metrics.observeRefresh(RefreshSuccess)
		return pair.Access, c.persist(ctx, refreshToken, pair)
	}

	// another request already refreshed since this one was sent
	if current, ok := c.session.AccessToken(ctx); ok && current != sent {
		c.metrics.observeRefresh(RefreshSkipped)
		return current, nil
	}

	// shared is also true for the caller that ran the flight
	led := false
	v, err, _ := c.group.Do(refreshToken, func() (any, error) {
		led = true
		// a flight that finished between the check above and this call
		if current, ok := c.session.AccessToken(ctx); ok && current != sent {
			return refreshResult{pair: model.TokenPair{Access: current}, skipped: true}, nil
		}
		detached := context.WithoutCancel(ctx)
		pair, err := c.requestRefresh(detached, refreshToken)
		if err != nil {
			return nil, err
		}
		// stored before the flight ends so late callers see the new token
		if err := c.persist(detached, refreshToken, pair); err != nil {
			return nil, err
		}
		return refreshResult{pair: pair}, nil
	})
	if err != nil {
		c.metrics.observeRefresh(RefreshFailure)
		return "", err
	}
	res := v.(refreshResult)
	switch {
	case res.skipped:
		c.metrics.observeRefresh(RefreshSkipped)
	case led:
		c.metrics.observeRefresh(RefreshSuccess)
	default:
		c.metrics.observeRefresh(RefreshShared)
		// the group may span sessions, so joiners store the result too
		return res.pair.Access, c.persist(ctx, refreshToken, res.pair)
	}
	return res.pair.Access, nil
}

type refreshResult struct {
	pair    model.TokenPair
	skipped bool
}

// requestRefresh calls the refresh endpoint on the bare client, outside the
// bearer and retry handling.
func (c *Client) requestRefresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	c.logger.Debug().Msg("refresh started")

	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return model.TokenPair{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(c.refreshPath, nil), bytes.NewReader(payload))
	if err != nil {
		return model.TokenPair{}, err
	}
	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return model.TokenPair{}, errors.Wrap(err, http.StatusBadGateway, "refresh request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TokenPair{}, errors.Wrap(err, http.StatusBadGateway, "refresh response unreadable")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.TokenPair{}, errors.FromResponse(resp.StatusCode, data)
	}

	var pair model.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return model.TokenPair{}, errors.Wrap(err, http.StatusBadGateway, "invalid refresh response")
	}
	if pair.Access == "" {
		return model.TokenPair{}, errors.BadGateway("refresh response has no access token")
	}
	c.logger.Debug().Bool("rotated", pair.Refresh != "" && pair.Refresh != refreshToken).Msg("refresh succeeded")
	return pair, nil
}

// persist stores the refreshed access token, and the refresh token when the
// server rotated it.
func (c *Client) persist(ctx context.Context, old string, pair model.TokenPair) error {
	ctx = context.WithoutCancel(ctx)
	if pair.Refresh != "" && pair.Refresh != old {
		return c.session.SaveTokens(ctx, pair.Access, pair.Refresh)
	}
	return c.session.SetAccessToken(ctx, pair.Access)
}

// endSession wipes the session and sends the user to the login page.
func (c *Client) endSession(ctx context.Context) {
	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear session")
	}
	c.navigator.Navigate(ctx, c.loginPath)
}
