// Package login implements the platform login strategies and the selector
// that picks one for the current runtime platform. Strategies normalize
// every flow into a session payload; the session store does the rest.
package login

import "context"

// CodeIssuer obtains a short-lived platform login code without user
// interaction. On WeChat this is the wx.login bridge supplied by the
// host application.
type CodeIssuer interface {
	IssueCode(ctx context.Context) (string, error)
}

// ConsentResult carries the profile fields the user agreed to share.
type ConsentResult struct {
	Nickname  string
	AvatarURL string
}

// ConsentPrompter asks the user for profile access. Declining is a
// normal outcome, not an error.
type ConsentPrompter interface {
	RequestProfileConsent(ctx context.Context) (ConsentResult, bool, error)
}
