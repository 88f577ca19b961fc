// Package session owns the client's authentication lifecycle: the single
// mutable session aggregate, exactly-once auto-login, persistence
// write-through, and the derived views the UI reads.
package session

import (
	"context"
)

// State of the session machine.
type State string

const (
	StateLoggedOut State = "logged_out"
	StateChecking  State = "checking"
	StateLoggedIn  State = "logged_in"
)

// Profile is the verified identity cached alongside the token.
type Profile struct {
	ID          int64  `json:"id"`
	Nickname    string `json:"nickname"`
	AvatarURL   string `json:"avatar"`
	Phone       string `json:"phone,omitempty"`
	Credits     int    `json:"credits"`
	TotalVideos int    `json:"totalVideos,omitempty"`
}

// Payload is the normalized result of any login strategy. Every strategy
// must produce this shape before the store commits it.
type Payload struct {
	Profile
	Token string `json:"token"`
}

// Method selects an interactive login flavor.
type Method string

const (
	// MethodConsent is the code exchange with a profile consent prompt.
	MethodConsent Method = "consent"
	// MethodAnonymous logs in with the persisted device identity.
	MethodAnonymous Method = "anonymous"
	// MethodPhone exchanges a phone number and SMS verification code.
	MethodPhone Method = "phone"
)

// LoginChoice carries the user's intent into the strategy selector.
type LoginChoice struct {
	Method  Method
	Phone   string
	SMSCode string
}

// Strategy produces a canonical session payload for one platform flow.
type Strategy interface {
	Execute(ctx context.Context) (Payload, error)
}

// Selector picks strategies for the current runtime platform. A platform
// with no matching strategy fails without any network call.
type Selector interface {
	Unattended() (Strategy, error)
	Interactive(choice LoginChoice) (Strategy, error)
}
