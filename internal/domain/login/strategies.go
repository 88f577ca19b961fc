package login

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skycanvas-client-go/internal/domain/keyvalue"
	"skycanvas-client-go/internal/domain/session"
	platformerrors "skycanvas-client-go/internal/platform/errors"
	"skycanvas-client-go/internal/platform/logging"
)

// anonymousNickname labels device-identity sessions until the user sets one.
const anonymousNickname = "游客"

// SilentExchange logs in with a platform code and no user interaction.
type SilentExchange struct {
	Issuer   CodeIssuer
	Exchange Exchanger
}

func (s *SilentExchange) Execute(ctx context.Context) (session.Payload, error) {
	code, err := s.Issuer.IssueCode(ctx)
	if err != nil {
		return session.Payload{}, platformerrors.Wrap(platformerrors.KindPlatform,
			"login.silent", "failed to obtain login code", err)
	}
	return s.Exchange.ExchangeCode(ctx, code, "", "")
}

// ConsentExchange is the silent code exchange plus a profile consent
// prompt. A declined or failed prompt degrades to empty profile fields
// instead of aborting the login.
type ConsentExchange struct {
	Issuer   CodeIssuer
	Prompter ConsentPrompter
	Exchange Exchanger
	Logger   *logging.Logger
}

func (c *ConsentExchange) Execute(ctx context.Context) (session.Payload, error) {
	code, err := c.Issuer.IssueCode(ctx)
	if err != nil {
		return session.Payload{}, platformerrors.Wrap(platformerrors.KindPlatform,
			"login.consent", "failed to obtain login code", err)
	}

	var nickname, avatar string
	result, granted, err := c.Prompter.RequestProfileConsent(ctx)
	switch {
	case err != nil:
		c.Logger.Warn("[login] profile consent prompt failed, continuing without profile: %v", err)
	case granted:
		nickname = result.Nickname
		avatar = result.AvatarURL
	}

	return c.Exchange.ExchangeCode(ctx, code, nickname, avatar)
}

// AnonymousDevice logs in with a persisted device identity. The identity
// is generated once and written through before its first use so that a
// crash between generation and login cannot fork identities.
type AnonymousDevice struct {
	KV       keyvalue.Store
	Exchange Exchanger
	Logger   *logging.Logger
}

func (a *AnonymousDevice) Execute(ctx context.Context) (session.Payload, error) {
	deviceID, err := a.deviceID(ctx)
	if err != nil {
		return session.Payload{}, err
	}
	return a.Exchange.ExchangeCode(ctx, deviceID, anonymousNickname, "")
}

func (a *AnonymousDevice) deviceID(ctx context.Context) (string, error) {
	id, ok, err := a.KV.Get(ctx, keyvalue.KeyDeviceID)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindStorage,
			"login.device", "failed to read device identity", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = newDeviceID()
	if err := a.KV.Set(ctx, keyvalue.KeyDeviceID, id); err != nil {
		return "", platformerrors.Wrap(platformerrors.KindStorage,
			"login.device", "failed to persist device identity", err)
	}
	a.Logger.Info("[login] generated device identity %s", id)
	return id, nil
}

func newDeviceID() string {
	raw := uuid.New()
	return fmt.Sprintf("dev_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(raw[:4]))
}

// PhoneCodeExchange logs in with a phone number and SMS verification code.
type PhoneCodeExchange struct {
	Phone    string
	SMSCode  string
	Exchange Exchanger
}

func (p *PhoneCodeExchange) Execute(ctx context.Context) (session.Payload, error) {
	if p.Phone == "" || p.SMSCode == "" {
		return session.Payload{}, platformerrors.New(platformerrors.KindBusiness,
			"login.phone", "手机号和验证码不能为空")
	}
	return p.Exchange.ExchangePhone(ctx, p.Phone, p.SMSCode)
}
