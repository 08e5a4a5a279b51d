package domain

import "time"

// TokenTTL is how long a token is trusted after login or refresh.
const TokenTTL = 3600 * time.Second

type Token struct {
	Access  string
	Refresh string
	// ExpiresAt is the local expiry used to decide when to log in again.
	ExpiresAt time.Time
	// ClaimsExpiry is the exp claim carried by the access token, when readable.
	ClaimsExpiry time.Time
}

// Bearer returns the credential attached to authenticated requests. The game API
// authorizes the refresh token of the login pair; Access is only used when a response
// carried nothing else.
func (t Token) Bearer() string {
	if t.Refresh != "" {
		return t.Refresh
	}
	return t.Access
}

func (t Token) Valid() bool {
	return t.Bearer() != ""
}

func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(t.ExpiresAt)
}

// Issued stamps the token with a local expiry of now plus TokenTTL.
func (t Token) Issued(now time.Time) Token {
	t.ExpiresAt = now.Add(TokenTTL)
	return t
}
