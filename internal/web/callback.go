package web

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	eventpkg "github.com/guildgate-org/backend/internal/event"
	"github.com/guildgate-org/backend/internal/lib"
	oauthpkg "github.com/guildgate-org/backend/internal/oauth"
	"github.com/guildgate-org/backend/internal/services"
	templatepkg "github.com/guildgate-org/backend/internal/template"
)

// CallbackHandler terminates the OAuth redirect: validate, exchange,
// identify, commit, respond. Terminal on first response.
type CallbackHandler struct {
	log           *zap.Logger
	oauth         *oauthpkg.Client
	verifications services.VerificationService
	broker        *eventpkg.KafkaClient
}

func NewCallbackHandler(log *zap.Logger, oauth *oauthpkg.Client, verifications services.VerificationService, broker *eventpkg.KafkaClient) *CallbackHandler {
	return &CallbackHandler{
		log:           log,
		oauth:         oauth,
		verifications: verifications,
		broker:        broker,
	}
}

func (h *CallbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	guildID := r.URL.Query().Get("state")
	if code == "" || guildID == "" {
		callbackTotal.WithLabelValues("missing_params").Inc()
		renderError(w, http.StatusBadRequest, "Error: Missing code or server ID")
		return
	}

	accessToken, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.log.Warn("token exchange failed", zap.String("guild_id", guildID), zap.Error(err))
		callbackTotal.WithLabelValues("exchange_failed").Inc()
		status, message := lib.HandleError(err)
		renderError(w, status, message)
		return
	}

	userID, err := h.oauth.Identity(ctx, accessToken)
	if err != nil {
		h.log.Warn("identity fetch failed", zap.String("guild_id", guildID), zap.Error(err))
		callbackTotal.WithLabelValues("identity_failed").Inc()
		status, message := lib.HandleError(err)
		renderError(w, status, message)
		return
	}

	if err := h.verifications.Commit(ctx, guildID, userID, accessToken); err != nil {
		// The verification did not persist; telling the member it worked
		// only costs them a confusing re-verify later.
		callbackTotal.WithLabelValues("save_failed").Inc()
		renderError(w, http.StatusInternalServerError, "Could not save your verification. Please try again.")
		return
	}

	if h.broker != nil {
		message := eventpkg.MemberVerifiedMessage{
			ID:      uuid.NewString(),
			GuildID: guildID,
			UserID:  userID,
		}
		if err := h.broker.WriteMessage(ctx, eventpkg.MEMBER_VERIFIED, message); err != nil {
			h.log.Warn("could not publish verification event", zap.Error(err))
		}
	}

	callbackTotal.WithLabelValues("ok").Inc()
	renderPage(w, http.StatusOK, "callback.html", struct {
		UserID  string
		GuildID string
	}{UserID: userID, GuildID: guildID})
}

func renderError(w http.ResponseWriter, status int, message string) {
	renderPage(w, status, "error.html", struct {
		Message string
	}{Message: message})
}

func renderPage(w http.ResponseWriter, status int, name string, data interface{}) {
	content, err := templatepkg.Render(name, data)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(content))
}
