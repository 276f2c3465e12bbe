package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/guildgate-org/backend/internal/lib"
)

const (
	defaultAuthURL  = "https://discord.com/oauth2/authorize"
	defaultTokenURL = "https://discord.com/api/oauth2/token"
	defaultUserURL  = "https://discord.com/api/users/@me"
)

// Scopes asked of every verifying member: identity resolution plus the
// grant that lets the bot add them to guilds later.
var Scopes = []string{"identify", "guilds.join"}

// Client drives the authorization-code flow against the Discord provider.
// Both operations are single round trips with no retry; a failure aborts
// the enclosing callback.
type Client struct {
	log        *zap.Logger
	config     *oauth2.Config
	userURL    string
	httpClient *http.Client
}

func NewClient(log *zap.Logger, clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		log: log,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  defaultAuthURL,
				TokenURL: defaultTokenURL,
			},
		},
		userURL: defaultUserURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithEndpoints overrides the provider endpoints, for tests.
func (c *Client) WithEndpoints(authURL, tokenURL, userURL string) *Client {
	c.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	c.userURL = userURL
	return c
}

// AuthCodeURL builds the verification link for a guild. The state
// parameter carries the raw guild ID so the callback knows which guild the
// member verified for.
func (c *Client) AuthCodeURL(guildID string) string {
	return c.config.AuthCodeURL(guildID)
}

// Exchange swaps an authorization code for an access token. A provider
// rejection comes back as *lib.TokenExchangeError carrying the remote
// response body.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		detail := err.Error()
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			detail = string(retrieveErr.Body)
		}
		return "", &lib.TokenExchangeError{Detail: detail}
	}
	return token.AccessToken, nil
}

// Identity resolves the authenticated member's Discord ID using the bearer
// token from Exchange.
func (c *Client) Identity(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &lib.IdentityFetchError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &lib.IdentityFetchError{StatusCode: resp.StatusCode, Detail: string(body)}
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", &lib.IdentityFetchError{StatusCode: resp.StatusCode, Detail: err.Error()}
	}
	if user.ID == "" {
		return "", &lib.IdentityFetchError{StatusCode: resp.StatusCode, Detail: "response missing user id"}
	}

	return user.ID, nil
}
