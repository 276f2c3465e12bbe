package event

// Event names carried as kafka message keys.
const (
	MEMBER_VERIFIED = "member.verified"
)

// MemberVerifiedMessage is published after a verification is committed to
// the store.
type MemberVerifiedMessage struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}
