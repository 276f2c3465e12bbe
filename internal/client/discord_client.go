package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultDiscordAPIURL is the Discord REST API base.
const DefaultDiscordAPIURL = "https://discord.com/api"

// AddMemberStatus classifies the outcome of a guild-member add.
type AddMemberStatus int

const (
	// AddMemberAdded means the member was added to the guild (201).
	AddMemberAdded AddMemberStatus = iota
	// AddMemberAlreadyPresent means the member was already in the guild (204).
	AddMemberAlreadyPresent
	// AddMemberFailed means Discord rejected the add; Detail on the result
	// carries the response body.
	AddMemberFailed
)

// AddMemberResult is the mapped outcome of one add-member call.
type AddMemberResult struct {
	Status AddMemberStatus
	Detail string
}

// DiscordClient is a client for the Discord REST API, authenticated with
// the bot's service credential.
type DiscordClient struct {
	// BaseURL can be pointed at a test server.
	BaseURL    string
	botToken   string
	httpClient *http.Client
}

// NewDiscordClient creates a new DiscordClient.
func NewDiscordClient(botToken string) *DiscordClient {
	return &DiscordClient{
		BaseURL:  DefaultDiscordAPIURL,
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *DiscordClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bot %s", c.botToken))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

// AddGuildMember adds a user to a guild using the access token the user
// granted during verification.
// See: https://discord.com/developers/docs/resources/guild#add-guild-member
func (c *DiscordClient) AddGuildMember(ctx context.Context, guildID, userID, accessToken string) (AddMemberResult, error) {
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	payload := map[string]string{"access_token": accessToken}

	status, body, err := c.do(ctx, http.MethodPut, path, payload)
	if err != nil {
		return AddMemberResult{}, err
	}

	switch status {
	case http.StatusCreated:
		return AddMemberResult{Status: AddMemberAdded}, nil
	case http.StatusNoContent:
		return AddMemberResult{Status: AddMemberAlreadyPresent}, nil
	default:
		return AddMemberResult{Status: AddMemberFailed, Detail: string(body)}, nil
	}
}

// GuildOwner resolves the owner of a guild.
func (c *DiscordClient) GuildOwner(ctx context.Context, guildID string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/guilds/%s", guildID), nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("guild lookup returned status %d: %s", status, body)
	}

	var guild struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(body, &guild); err != nil {
		return "", err
	}
	return guild.OwnerID, nil
}

// Role is a guild role as returned by the Discord API.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GuildRoles lists the roles of a guild.
func (c *DiscordClient) GuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/guilds/%s/roles", guildID), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("role listing returned status %d: %s", status, body)
	}

	var roles []Role
	if err := json.Unmarshal(body, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole creates a guild role by name.
func (c *DiscordClient) CreateRole(ctx context.Context, guildID, name string) (Role, error) {
	payload := map[string]string{"name": name}
	status, body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/guilds/%s/roles", guildID), payload)
	if err != nil {
		return Role{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return Role{}, fmt.Errorf("role creation returned status %d: %s", status, body)
	}

	var role Role
	if err := json.Unmarshal(body, &role); err != nil {
		return Role{}, err
	}
	return role, nil
}

// AddMemberRole assigns an existing role to a guild member.
func (c *DiscordClient) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID)
	status, body, err := c.do(ctx, http.MethodPut, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("role assignment returned status %d: %s", status, body)
	}
	return nil
}
