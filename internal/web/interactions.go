package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/guildgate-org/backend/internal/lib"
	oauthpkg "github.com/guildgate-org/backend/internal/oauth"
	"github.com/guildgate-org/backend/internal/services"
)

// Interaction wire constants, per the Discord interactions contract.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	responsePong           = 1
	responseChannelMessage = 4

	flagEphemeral = 64
)

const (
	colorBlue  = 0x3498db
	colorGreen = 0x2ecc71
	colorRed   = 0xe74c3c
)

type interaction struct {
	Type int `json:"type"`
	Data struct {
		Name    string `json:"name"`
		Options []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"options"`
	} `json:"data"`
	GuildID string `json:"guild_id"`
	Member  struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"member"`
}

type interactionResponse struct {
	Type int           `json:"type"`
	Data *responseData `json:"data,omitempty"`
}

type responseData struct {
	Content string  `json:"content,omitempty"`
	Flags   int     `json:"flags,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// InteractionsHandler serves the bot's slash commands over the Discord
// interactions webhook: verify, join, list, about.
type InteractionsHandler struct {
	log           *zap.Logger
	oauth         *oauthpkg.Client
	verifications services.VerificationService
	memberships   services.MembershipService
}

func NewInteractionsHandler(log *zap.Logger, oauth *oauthpkg.Client, verifications services.VerificationService, memberships services.MembershipService) *InteractionsHandler {
	return &InteractionsHandler{
		log:           log,
		oauth:         oauth,
		verifications: verifications,
		memberships:   memberships,
	}
}

func (h *InteractionsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var in interaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	if in.Type == interactionPing {
		respond(w, interactionResponse{Type: responsePong})
		return
	}
	if in.Type != interactionApplicationCommand {
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
		return
	}

	switch in.Data.Name {
	case "verify":
		respond(w, h.verifyCommand(in))
	case "join":
		respond(w, h.joinCommand(r, in))
	case "list":
		respond(w, h.listCommand(r, in))
	case "about":
		respond(w, h.aboutCommand())
	default:
		http.Error(w, "unknown command", http.StatusBadRequest)
	}
}

func (h *InteractionsHandler) verifyCommand(in interaction) interactionResponse {
	authURL := h.oauth.AuthCodeURL(in.GuildID)
	return ephemeral(fmt.Sprintf("Click the link below to verify:\n%s", authURL))
}

func (h *InteractionsHandler) joinCommand(r *http.Request, in interaction) interactionResponse {
	targetGuildID := ""
	for _, option := range in.Data.Options {
		if option.Name == "server_id" {
			targetGuildID = option.Value
		}
	}
	if targetGuildID == "" {
		return ephemeral("❌ Missing server_id.")
	}

	results, err := h.memberships.Sync(r.Context(), in.GuildID, targetGuildID, in.Member.User.ID)
	if err != nil {
		if errors.Is(err, lib.ErrUnauthorized) {
			return ephemeral("❌ Only the server owner can use this command!")
		}
		if errors.Is(err, lib.ErrNoVerifiedMembers) {
			return ephemeral("⚠️ No verified users found in this server!")
		}
		h.log.Error("membership sync failed", zap.Error(err))
		return ephemeral("❌ Something went wrong, try again later.")
	}

	lines := make([]string, 0, len(results))
	for _, result := range results {
		syncResultTotal.WithLabelValues(syncResultLabel(result.Kind)).Inc()
		lines = append(lines, result.Summary())
	}
	return ephemeral(strings.Join(lines, "\n"))
}

func (h *InteractionsHandler) listCommand(r *http.Request, in interaction) interactionResponse {
	members, err := h.verifications.List(r.Context(), in.GuildID)
	if err != nil {
		h.log.Error("could not list verified members", zap.Error(err))
		return ephemeral("❌ Something went wrong, try again later.")
	}

	if len(members) == 0 {
		return embedResponse(embed{
			Title:       "⚠️ No Verified Users",
			Description: "There are no verified users in this server.",
			Color:       colorRed,
		})
	}

	lines := make([]string, 0, len(members))
	for _, userID := range members {
		lines = append(lines, fmt.Sprintf("- <@%s> (`%s`)", userID, userID))
	}
	return embedResponse(embed{
		Title:       "✅ Verified Users",
		Description: strings.Join(lines, "\n"),
		Color:       colorGreen,
		Footer:      &embedFooter{Text: fmt.Sprintf("Total: %d users", len(members))},
	})
}

func (h *InteractionsHandler) aboutCommand() interactionResponse {
	return embedResponse(embed{
		Title:       "🤖 Bot Information",
		Description: "This bot verifies users and allows them to join servers securely!",
		Color:       colorBlue,
		Fields: []embedField{
			{
				Name: "🛠 Commands",
				Value: "**`/verify`** - Sends the verification link.\n" +
					"**`/join [server_id]`** - Adds verified users to another server.\n" +
					"**`/list`** - Lists all verified users in the server.\n" +
					"**`/about`** - Shows information about the bot.",
			},
		},
		Footer: &embedFooter{Text: "Made for secure user verification and seamless server joining."},
	})
}

func syncResultLabel(kind services.SyncResultKind) string {
	switch kind {
	case services.SyncAdded:
		return "added"
	case services.SyncAlreadyMember:
		return "already_member"
	case services.SyncMissingToken:
		return "missing_token"
	default:
		return "failed"
	}
}

func ephemeral(content string) interactionResponse {
	return interactionResponse{
		Type: responseChannelMessage,
		Data: &responseData{
			Content: content,
			Flags:   flagEphemeral,
		},
	}
}

func embedResponse(e embed) interactionResponse {
	return interactionResponse{
		Type: responseChannelMessage,
		Data: &responseData{
			Embeds: []embed{e},
		},
	}
}

func respond(w http.ResponseWriter, response interactionResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
