package login

import (
	"fmt"

	"skycanvas-client-go/internal/domain/keyvalue"
	"skycanvas-client-go/internal/domain/session"
	platformerrors "skycanvas-client-go/internal/platform/errors"
	"skycanvas-client-go/internal/platform/logging"
)

// SelectorOptions carries the collaborators strategies are built from.
// Issuer and Prompter may be nil on platforms whose capabilities never
// reach them.
type SelectorOptions struct {
	Platform string
	Issuer   CodeIssuer
	Prompter ConsentPrompter
	Exchange Exchanger
	KV       keyvalue.Store
	Logger   *logging.Logger
}

// Selector maps the runtime platform onto concrete login strategies.
type Selector struct {
	platform string
	caps     Capabilities
	issuer   CodeIssuer
	prompter ConsentPrompter
	exchange Exchanger
	kv       keyvalue.Store
	logger   *logging.Logger
}

// NewSelector validates the platform and its required collaborators up
// front so that selection failures never involve the network.
func NewSelector(opts SelectorOptions) (*Selector, error) {
	caps, ok := CapabilitiesFor(opts.Platform)
	if !ok {
		return nil, platformerrors.New(platformerrors.KindPlatform,
			"login.selector", fmt.Sprintf("未知平台: %s", opts.Platform))
	}
	if opts.Exchange == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"login.selector", "selector requires an exchanger")
	}
	if caps.SilentCode && opts.Issuer == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"login.selector", fmt.Sprintf("platform %s requires a code issuer", opts.Platform))
	}
	if caps.ProfileConsent && opts.Prompter == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"login.selector", fmt.Sprintf("platform %s requires a consent prompter", opts.Platform))
	}
	if caps.DeviceFallback && opts.KV == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"login.selector", fmt.Sprintf("platform %s requires a keyvalue store", opts.Platform))
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"login.selector", "selector requires a logger")
	}

	return &Selector{
		platform: opts.Platform,
		caps:     caps,
		issuer:   opts.Issuer,
		prompter: opts.Prompter,
		exchange: opts.Exchange,
		kv:       opts.KV,
		logger:   opts.Logger,
	}, nil
}

// Unattended returns the strategy used for cold-start auto-login.
func (s *Selector) Unattended() (session.Strategy, error) {
	switch {
	case s.caps.SilentCode:
		return &SilentExchange{Issuer: s.issuer, Exchange: s.exchange}, nil
	case s.caps.DeviceFallback:
		return &AnonymousDevice{KV: s.kv, Exchange: s.exchange, Logger: s.logger}, nil
	default:
		return nil, platformerrors.New(platformerrors.KindPlatform,
			"login.selector", fmt.Sprintf("平台 %s 不支持静默登录", s.platform))
	}
}

// Interactive returns the strategy for an explicit user login choice.
func (s *Selector) Interactive(choice session.LoginChoice) (session.Strategy, error) {
	switch choice.Method {
	case session.MethodConsent:
		if !s.caps.ProfileConsent {
			return nil, s.unsupported("授权登录")
		}
		return &ConsentExchange{
			Issuer:   s.issuer,
			Prompter: s.prompter,
			Exchange: s.exchange,
			Logger:   s.logger,
		}, nil
	case session.MethodAnonymous:
		if !s.caps.DeviceFallback {
			return nil, s.unsupported("游客登录")
		}
		return &AnonymousDevice{KV: s.kv, Exchange: s.exchange, Logger: s.logger}, nil
	case session.MethodPhone:
		if !s.caps.PhoneLogin {
			return nil, s.unsupported("手机号登录")
		}
		return &PhoneCodeExchange{
			Phone:    choice.Phone,
			SMSCode:  choice.SMSCode,
			Exchange: s.exchange,
		}, nil
	default:
		return nil, platformerrors.New(platformerrors.KindPlatform,
			"login.selector", fmt.Sprintf("未知登录方式: %s", choice.Method))
	}
}

func (s *Selector) unsupported(flavor string) error {
	return platformerrors.New(platformerrors.KindPlatform,
		"login.selector", fmt.Sprintf("平台 %s 不支持%s", s.platform, flavor))
}
