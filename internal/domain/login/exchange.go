package login

import (
	"context"

	"skycanvas-client-go/internal/domain/gateway"
	"skycanvas-client-go/internal/domain/session"
)

// Exchanger trades platform credentials for a session payload.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code, nickname, avatar string) (session.Payload, error)
	ExchangePhone(ctx context.Context, phone, smsCode string) (session.Payload, error)
}

type codeLoginRequest struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type phoneLoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type gatewayExchanger struct {
	client *gateway.Client
}

// NewExchanger builds the Exchanger served by the request gateway.
func NewExchanger(client *gateway.Client) Exchanger {
	return &gatewayExchanger{client: client}
}

func (g *gatewayExchanger) ExchangeCode(ctx context.Context, code, nickname, avatar string) (session.Payload, error) {
	var payload session.Payload
	body := codeLoginRequest{Code: code, Nickname: nickname, Avatar: avatar}
	if err := g.client.PostJSON(ctx, "/auth/login", body, &payload); err != nil {
		return session.Payload{}, err
	}
	return payload, nil
}

func (g *gatewayExchanger) ExchangePhone(ctx context.Context, phone, smsCode string) (session.Payload, error) {
	var payload session.Payload
	body := phoneLoginRequest{Phone: phone, Code: smsCode}
	if err := g.client.PostJSON(ctx, "/auth/login/phone", body, &payload); err != nil {
		return session.Payload{}, err
	}
	return payload, nil
}
