package mal

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource exposes the client's token lifecycle as an
// oauth2.TokenSource, so libraries built on golang.org/x/oauth2 can
// consume it. Each Token call runs the same preflight as a dispatch:
// a present access token is returned as-is, a missing one is refreshed.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	_, access, err := ts.client.preflight(ts.ctx)
	if err != nil {
		return nil, err
	}
	pair, err := ts.client.store.Get()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
