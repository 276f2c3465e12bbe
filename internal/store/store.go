package store

import (
	"encoding/json"

	"github.com/guildgate-org/backend/internal/lib"
)

// Store is the full verified-member document shared by every backend.
// The wire shape is fixed by earlier deployments of the bot:
//
//	{"servers": {"<guildID>": {"verified_users": [...], "tokens": {...}}}}
type Store struct {
	Servers map[string]*Community `json:"servers"`
}

// Community holds the verified members of one guild. VerifiedUsers keeps
// verification order and never contains duplicates; Tokens maps a member to
// their latest OAuth access token.
type Community struct {
	VerifiedUsers []string          `json:"verified_users"`
	Tokens        map[string]string `json:"tokens"`
}

// storeSchema constrains the shape of a persisted document without
// requiring the per-community fields; missing fields are backfilled by
// Normalize rather than rejected.
const storeSchema = `{
	"type": "object",
	"properties": {
		"servers": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"verified_users": {
						"type": "array",
						"items": {"type": "string"}
					},
					"tokens": {
						"type": "object",
						"additionalProperties": {"type": "string"}
					}
				}
			}
		}
	},
	"required": ["servers"]
}`

// NewStore returns an empty document.
func NewStore() *Store {
	return &Store{Servers: map[string]*Community{}}
}

// Normalize backfills fields that documents written by older revisions may
// lack, so callers never see nil members or tokens.
func (s *Store) Normalize() {
	if s.Servers == nil {
		s.Servers = map[string]*Community{}
	}
	for id, community := range s.Servers {
		if community == nil {
			community = &Community{}
			s.Servers[id] = community
		}
		if community.VerifiedUsers == nil {
			community.VerifiedUsers = []string{}
		}
		if community.Tokens == nil {
			community.Tokens = map[string]string{}
		}
	}
}

// Community returns the record for a guild, creating it lazily.
func (s *Store) Community(guildID string) *Community {
	community, ok := s.Servers[guildID]
	if !ok {
		community = &Community{
			VerifiedUsers: []string{},
			Tokens:        map[string]string{},
		}
		s.Servers[guildID] = community
	}
	return community
}

// AddVerified records a completed verification: membership and token are
// applied together so the document never holds one without the other.
// Re-verification keeps the member's position and overwrites the token.
func (s *Store) AddVerified(guildID, userID, accessToken string) {
	community := s.Community(guildID)
	if !contains(community.VerifiedUsers, userID) {
		community.VerifiedUsers = append(community.VerifiedUsers, userID)
	}
	community.Tokens[userID] = accessToken
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// decode parses and validates a persisted document. A document that is not
// valid JSON or does not match the schema is an error; the Client turns
// that into the empty store.
func decode(raw []byte) (*Store, error) {
	keyErrors, err := lib.ValidateJSON(raw, storeSchema)
	if err != nil {
		return nil, err
	}
	if len(keyErrors) > 0 {
		return nil, keyErrors[0]
	}

	var store Store
	if err := json.Unmarshal(raw, &store); err != nil {
		return nil, err
	}
	store.Normalize()
	return &store, nil
}
