package session

import (
	"context"

	"skycanvas-client-go/internal/domain/gateway"
)

// ProfileAPI is the slice of the backend the session store talks to
// directly. Login exchanges live in the strategy layer instead.
type ProfileAPI interface {
	FetchProfile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) error
	SendSMSCode(ctx context.Context, phone string) error
	BindPhone(ctx context.Context, phone, code string) error
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

type authAPI struct {
	client *gateway.Client
}

// NewAuthAPI builds the ProfileAPI served by the request gateway.
func NewAuthAPI(client *gateway.Client) ProfileAPI {
	return &authAPI{client: client}
}

func (a *authAPI) FetchProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := a.client.GetJSON(ctx, "/auth/userinfo", &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (a *authAPI) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return a.client.PutJSON(ctx, "/auth/userinfo", update, nil)
}

func (a *authAPI) SendSMSCode(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return a.client.PostJSON(ctx, "/auth/sms/code", body, nil)
}

func (a *authAPI) BindPhone(ctx context.Context, phone, code string) error {
	body := map[string]string{"phone": phone, "code": code}
	return a.client.PostJSON(ctx, "/auth/phone/bind", body, nil)
}
