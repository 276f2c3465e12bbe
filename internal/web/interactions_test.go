package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	clientpkg "github.com/guildgate-org/backend/internal/client"
	oauthpkg "github.com/guildgate-org/backend/internal/oauth"
	membershippkg "github.com/guildgate-org/backend/internal/services/membership"
	verificationpkg "github.com/guildgate-org/backend/internal/services/verification"
	storepkg "github.com/guildgate-org/backend/internal/store"
)

func newInteractionsEnv(t *testing.T, discordHandler http.HandlerFunc) (*storepkg.Client, *InteractionsHandler) {
	t.Helper()

	if discordHandler == nil {
		discordHandler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected discord call %s %s", r.Method, r.URL.Path)
		}
	}
	srv := httptest.NewServer(discordHandler)
	t.Cleanup(srv.Close)

	discord := clientpkg.NewDiscordClient("bot-token")
	discord.BaseURL = srv.URL

	store := storepkg.NewClient(zap.NewNop(), storepkg.NewFileBackend(filepath.Join(t.TempDir(), "verified.json")))
	oauth := oauthpkg.NewClient(zap.NewNop(), "client-id", "client-secret", "https://bot.example/callback")
	verifications := verificationpkg.NewVerificationService(store, zap.NewNop())
	memberships := membershippkg.NewMembershipService(store, discord, zap.NewNop())

	return store, NewInteractionsHandler(zap.NewNop(), oauth, verifications, memberships)
}

func postInteraction(t *testing.T, handler *InteractionsHandler, payload string) (*httptest.ResponseRecorder, interactionResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(payload))
	res := httptest.NewRecorder()
	handler.Handle(res, req)

	var response interactionResponse
	if res.Code == http.StatusOK {
		if err := json.Unmarshal(res.Body.Bytes(), &response); err != nil {
			t.Fatalf("decode response: %v\n%s", err, res.Body.String())
		}
	}
	return res, response
}

func TestInteractionsPingPong(t *testing.T) {
	_, handler := newInteractionsEnv(t, nil)

	res, response := postInteraction(t, handler, `{"type": 1}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
	if response.Type != responsePong {
		t.Errorf("type = %d", response.Type)
	}
}

func TestVerifyCommandLinksTheInvokingGuild(t *testing.T) {
	_, handler := newInteractionsEnv(t, nil)

	payload := `{"type": 2, "guild_id": "999", "data": {"name": "verify"}, "member": {"user": {"id": "42"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil {
		t.Fatal("missing response data")
	}
	if response.Data.Flags != flagEphemeral {
		t.Errorf("verify reply must be ephemeral, flags = %d", response.Data.Flags)
	}
	if !strings.Contains(response.Data.Content, "state=999") {
		t.Errorf("auth link missing guild state: %s", response.Data.Content)
	}
	if !strings.Contains(response.Data.Content, "client_id=client-id") {
		t.Errorf("auth link missing client id: %s", response.Data.Content)
	}
}

func TestJoinCommandReportsPerMemberResults(t *testing.T) {
	discord := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"owner_id": "owner1"}`))
		case strings.HasSuffix(r.URL.Path, "/members/a"):
			w.WriteHeader(http.StatusCreated)
		case strings.HasSuffix(r.URL.Path, "/members/b"):
			w.WriteHeader(http.StatusNoContent)
		}
	}
	store, handler := newInteractionsEnv(t, discord)
	seedStore(t, store, func(s *storepkg.Store) {
		s.AddVerified("src", "a", "token-a")
		s.AddVerified("src", "b", "token-b")
	})

	payload := `{"type": 2, "guild_id": "src", "data": {"name": "join", "options": [{"name": "server_id", "value": "dst"}]}, "member": {"user": {"id": "owner1"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil {
		t.Fatal("missing response data")
	}
	lines := strings.Split(response.Data.Content, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 report lines, got %q", response.Data.Content)
	}
	if !strings.Contains(lines[0], "<@a>") || !strings.Contains(lines[0], "Successfully added") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "<@b>") || !strings.Contains(lines[1], "already in the server") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestJoinCommandRejectsNonOwner(t *testing.T) {
	discord := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"owner_id": "owner1"}`))
			return
		}
		t.Errorf("non-owner join must not call %s %s", r.Method, r.URL.Path)
	}
	store, handler := newInteractionsEnv(t, discord)
	seedStore(t, store, func(s *storepkg.Store) {
		s.AddVerified("src", "a", "token-a")
	})

	payload := `{"type": 2, "guild_id": "src", "data": {"name": "join", "options": [{"name": "server_id", "value": "dst"}]}, "member": {"user": {"id": "intruder"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil || !strings.Contains(response.Data.Content, "server owner") {
		t.Errorf("response = %+v", response.Data)
	}
}

func TestListCommandRendersVerifiedMembers(t *testing.T) {
	store, handler := newInteractionsEnv(t, nil)
	seedStore(t, store, func(s *storepkg.Store) {
		s.AddVerified("999", "42", "xyz")
		s.AddVerified("999", "7", "abc")
	})

	payload := `{"type": 2, "guild_id": "999", "data": {"name": "list"}, "member": {"user": {"id": "42"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil || len(response.Data.Embeds) != 1 {
		t.Fatalf("response = %+v", response.Data)
	}
	embed := response.Data.Embeds[0]
	if !strings.Contains(embed.Description, "<@42>") || !strings.Contains(embed.Description, "<@7>") {
		t.Errorf("description = %q", embed.Description)
	}
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "2") {
		t.Errorf("footer = %+v", embed.Footer)
	}
}

func TestListCommandEmptyGuild(t *testing.T) {
	_, handler := newInteractionsEnv(t, nil)

	payload := `{"type": 2, "guild_id": "999", "data": {"name": "list"}, "member": {"user": {"id": "42"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil || len(response.Data.Embeds) != 1 {
		t.Fatalf("response = %+v", response.Data)
	}
	if !strings.Contains(response.Data.Embeds[0].Title, "No Verified Users") {
		t.Errorf("title = %q", response.Data.Embeds[0].Title)
	}
}

func TestAboutCommand(t *testing.T) {
	_, handler := newInteractionsEnv(t, nil)

	payload := `{"type": 2, "guild_id": "999", "data": {"name": "about"}, "member": {"user": {"id": "42"}}}`
	_, response := postInteraction(t, handler, payload)

	if response.Data == nil || len(response.Data.Embeds) != 1 {
		t.Fatalf("response = %+v", response.Data)
	}
	if !strings.Contains(response.Data.Embeds[0].Fields[0].Value, "/verify") {
		t.Errorf("about embed missing command help")
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	_, handler := newInteractionsEnv(t, nil)

	res, _ := postInteraction(t, handler, `{"type": 2, "guild_id": "999", "data": {"name": "shrug"}}`)
	if res.Code != http.StatusBadRequest {
		t.Errorf("status = %d", res.Code)
	}
}

func seedStore(t *testing.T, store *storepkg.Client, seed func(*storepkg.Store)) {
	t.Helper()
	if err := store.Update(context.Background(), func(s *storepkg.Store) error {
		seed(s)
		return nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}
