package fixtures

// GuildFixture represents a guild with verified members for testing.
type GuildFixture struct {
	GuildID       string
	VerifiedUsers []string
	Tokens        map[string]string
}

// GetTestGuild returns a standard guild for use in tests.
func GetTestGuild() GuildFixture {
	return GuildFixture{
		GuildID:       "100200300400500600",
		VerifiedUsers: []string{"111111111111111111", "222222222222222222"},
		Tokens: map[string]string{
			"111111111111111111": "access-token-one",
			"222222222222222222": "access-token-two",
		},
	}
}

// GetSecondTestGuild returns a second guild so tests can verify that
// state is kept separate per guild.
func GetSecondTestGuild() GuildFixture {
	return GuildFixture{
		GuildID:       "900800700600500400",
		VerifiedUsers: []string{"333333333333333333"},
		Tokens: map[string]string{
			"333333333333333333": "access-token-three",
		},
	}
}

// GetLegacyGuild returns a guild as written by older deployments, with a
// member list but no token map.
func GetLegacyGuild() GuildFixture {
	return GuildFixture{
		GuildID:       "123123123123123123",
		VerifiedUsers: []string{"444444444444444444"},
		Tokens:        nil,
	}
}
