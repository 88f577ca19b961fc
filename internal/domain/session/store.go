package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"skycanvas-client-go/internal/domain/avatar"
	"skycanvas-client-go/internal/domain/eventbus"
	"skycanvas-client-go/internal/domain/keyvalue"
	platformerrors "skycanvas-client-go/internal/platform/errors"
	"skycanvas-client-go/internal/platform/logging"
)

// initRetries bounds the auto-login self-retry after a failed token
// validation. One retry, then the failure surfaces.
const initRetries = 1

// Options encapsulates the dependencies required to construct a Store.
type Options struct {
	KV       keyvalue.Store
	API      ProfileAPI
	Selector Selector
	Bus      eventbus.Bus
	Logger   *logging.Logger
}

// Store is the session state machine. It is the only component allowed to
// mutate the session aggregate; everything else reads derived views.
type Store struct {
	mu          sync.Mutex
	token       string
	profile     *Profile
	state       State
	initChecked bool
	// generation increments on every clear so an in-flight login cannot
	// commit a stale payload over a forced invalidation.
	generation uint64

	kv       keyvalue.Store
	api      ProfileAPI
	selector Selector
	bus      eventbus.Bus
	logger   *logging.Logger

	initGroup singleflight.Group
}

// NewStore wires a Store and hydrates it from persisted state.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.KV == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"session.new", "session store requires a keyvalue store")
	}
	if opts.API == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"session.new", "session store requires a profile api")
	}
	if opts.Selector == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"session.new", "session store requires a strategy selector")
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New()
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(platformerrors.KindBootstrap,
			"session.new", "session store requires a logger")
	}

	s := &Store{
		state:    StateLoggedOut,
		kv:       opts.KV,
		api:      opts.API,
		selector: opts.Selector,
		bus:      opts.Bus,
		logger:   opts.Logger,
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// hydrate restores token and profile from the persistent store. The state
// is LoggedIn only when both survive.
func (s *Store) hydrate(ctx context.Context) error {
	token, _, err := s.kv.Get(ctx, keyvalue.KeyToken)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.hydrate", "failed to read persisted token", err)
	}

	var profile *Profile
	raw, ok, err := s.kv.Get(ctx, keyvalue.KeyUserInfo)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.hydrate", "failed to read persisted profile", err)
	}
	if ok && raw != "" {
		var p Profile
		if err := sonic.UnmarshalString(raw, &p); err != nil {
			// Corrupt cache entry; drop it rather than fail startup.
			s.logger.Warn("[session] discarding corrupt persisted profile: %v", err)
			_ = s.kv.Remove(ctx, keyvalue.KeyUserInfo)
		} else {
			profile = &p
		}
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	if token != "" && profile != nil {
		s.state = StateLoggedIn
	} else {
		s.state = StateLoggedOut
	}
	s.mu.Unlock()
	return nil
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// InitLogin runs the unattended auto-login sequence at most once per
// process lifetime. The guard is set before the first suspension point so
// two near-simultaneous callers trigger exactly one strategy execution.
func (s *Store) InitLogin(ctx context.Context) error {
	s.mu.Lock()
	if s.initChecked {
		s.mu.Unlock()
		return nil
	}
	s.initChecked = true
	s.mu.Unlock()

	_, err, _ := s.initGroup.Do("init-login", func() (any, error) {
		return nil, s.runInit(ctx, initRetries)
	})
	return err
}

func (s *Store) runInit(ctx context.Context, retries int) error {
	s.mu.Lock()
	s.initChecked = true
	token := s.token
	if token == "" {
		s.state = StateChecking
	} else {
		// Optimistic: avoids a logged-out flicker while the token is
		// re-validated in the background.
		s.state = StateLoggedIn
	}
	s.mu.Unlock()

	if token == "" {
		strategy, err := s.selector.Unattended()
		if err != nil {
			s.setState(StateLoggedOut)
			return err
		}
		gen := s.currentGeneration()
		payload, err := strategy.Execute(ctx)
		if err != nil {
			s.logger.Warn("[session] unattended login failed: %v", err)
			s.setState(StateLoggedOut)
			return err
		}
		return s.commit(ctx, payload, gen)
	}

	if err := s.RefreshProfile(ctx, false); err != nil {
		s.logger.Warn("[session] token validation failed, clearing session: %v", err)
		// A 401 already cleared everything through the gateway hook;
		// Logout is idempotent for every other failure kind.
		s.Logout()
		if retries > 0 {
			return s.runInit(ctx, retries-1)
		}
		return err
	}
	s.logger.Info("[session] auto-login succeeded")
	return nil
}

// Login runs an interactive strategy. On failure the session state is
// exactly what it was before the call.
func (s *Store) Login(ctx context.Context, choice LoginChoice) error {
	strategy, err := s.selector.Interactive(choice)
	if err != nil {
		return err
	}

	gen := s.currentGeneration()
	payload, err := strategy.Execute(ctx)
	if err != nil {
		return err
	}
	return s.commit(ctx, payload, gen)
}

// commit atomically installs the payload and writes it through to the
// persistent store. A generation mismatch means a forced clear happened
// while the strategy was in flight; the stale payload is discarded.
func (s *Store) commit(ctx context.Context, payload Payload, gen uint64) error {
	if payload.Token == "" {
		return platformerrors.New(platformerrors.KindBusiness,
			"session.commit", "login payload missing token")
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Warn("[session] discarding stale login payload after forced clear")
		return nil
	}
	s.mu.Unlock()

	encoded, err := sonic.MarshalString(payload.Profile)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.commit", "failed to encode profile", err)
	}
	if err := s.kv.Set(ctx, keyvalue.KeyToken, payload.Token); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.commit", "failed to persist token", err)
	}
	if err := s.kv.Set(ctx, keyvalue.KeyUserInfo, encoded); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.commit", "failed to persist profile", err)
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		// Forced clear raced the write-through; honor the clear.
		_ = s.kv.Remove(ctx, keyvalue.KeyToken)
		_ = s.kv.Remove(ctx, keyvalue.KeyUserInfo)
		s.logger.Warn("[session] discarding stale login payload after forced clear")
		return nil
	}
	profile := payload.Profile
	s.token = payload.Token
	s.profile = &profile
	s.state = StateLoggedIn
	s.mu.Unlock()

	s.logger.Info("[session] session active: %s (credits=%d)", profile.Nickname, profile.Credits)
	s.bus.Publish(eventbus.TopicSessionActive, profile.Nickname, profile.Credits)
	if profile.Credits > 0 {
		s.bus.Publish(eventbus.TopicToast, fmt.Sprintf("欢迎回来！您有 %d 积分", profile.Credits))
	} else {
		s.bus.Publish(eventbus.TopicToast, "登录成功")
	}
	return nil
}

// Logout clears the session in memory and in the persistent store. The
// device identity survives, and a later InitLogin is permitted again.
func (s *Store) Logout() {
	s.clear(eventbus.TopicSessionCleared)
}

// Invalidate implements gateway.Invalidator: the forced teardown after an
// authorization failure from any request. Safe to call when the session
// is already empty.
func (s *Store) Invalidate() {
	s.clear(eventbus.TopicSessionExpired)
	s.bus.Publish(eventbus.TopicNavigateLogin)
}

func (s *Store) clear(topic string) {
	s.mu.Lock()
	s.generation++
	s.token = ""
	s.profile = nil
	s.state = StateLoggedOut
	s.initChecked = false
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.kv.Remove(ctx, keyvalue.KeyToken); err != nil {
		s.logger.Error("[session] failed to clear persisted token: %v", err)
	}
	if err := s.kv.Remove(ctx, keyvalue.KeyUserInfo); err != nil {
		s.logger.Error("[session] failed to clear persisted profile: %v", err)
	}

	s.bus.Publish(topic)
}

// RefreshProfile re-fetches the profile. logoutOnFailure distinguishes an
// explicit user action (tear down on failure) from a background refresh
// (propagate and let the caller decide).
func (s *Store) RefreshProfile(ctx context.Context, logoutOnFailure bool) error {
	gen := s.currentGeneration()

	profile, err := s.api.FetchProfile(ctx)
	if err != nil {
		if logoutOnFailure {
			s.Logout()
		}
		return err
	}

	// Same stale-result guard as commit: a forced clear that landed while
	// the fetch was in flight wins over the returning profile.
	if s.currentGeneration() != gen {
		s.logger.Warn("[session] discarding stale profile after forced clear")
		return nil
	}
	if err := s.persistProfile(ctx, profile); err != nil {
		return err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		// Forced clear raced the write-through; honor the clear.
		_ = s.kv.Remove(ctx, keyvalue.KeyUserInfo)
		s.logger.Warn("[session] discarding stale profile after forced clear")
		return nil
	}
	s.profile = &profile
	if s.token != "" {
		s.state = StateLoggedIn
	}
	s.mu.Unlock()
	return nil
}

// UpdateLocalCredits reflects a balance returned by another operation.
// Local mutation plus write-through only; no network call.
func (s *Store) UpdateLocalCredits(credits int) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	s.profile.Credits = credits
	profile := *s.profile
	gen := s.generation
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.persistProfile(ctx, profile); err != nil {
		s.logger.Error("[session] failed to persist credit update: %v", err)
		return
	}
	if s.currentGeneration() != gen {
		_ = s.kv.Remove(ctx, keyvalue.KeyUserInfo)
	}
}

// UpdateProfile pushes edited profile fields and reloads the profile.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := s.api.UpdateProfile(ctx, update); err != nil {
		return err
	}
	if err := s.RefreshProfile(ctx, false); err != nil {
		return err
	}
	s.bus.Publish(eventbus.TopicToast, "更新成功")
	return nil
}

// SendSMSCode requests a verification code for the phone number.
func (s *Store) SendSMSCode(ctx context.Context, phone string) error {
	if err := s.api.SendSMSCode(ctx, phone); err != nil {
		return err
	}
	s.bus.Publish(eventbus.TopicToast, "验证码已发送")
	return nil
}

// BindPhone attaches a verified phone number to the account and reloads
// the profile.
func (s *Store) BindPhone(ctx context.Context, phone, code string) error {
	if err := s.api.BindPhone(ctx, phone, code); err != nil {
		return err
	}
	if err := s.RefreshProfile(ctx, false); err != nil {
		return err
	}
	s.bus.Publish(eventbus.TopicToast, "绑定成功")
	return nil
}

// EnsureLogin reports whether a session exists; when it does not, the
// shell is asked to route to the login surface, where it drives Login
// with the user's chosen method.
func (s *Store) EnsureLogin() bool {
	if s.HasSession() {
		return true
	}
	s.bus.Publish(eventbus.TopicToast, "请先登录")
	s.bus.Publish(eventbus.TopicNavigateLogin)
	return false
}

func (s *Store) persistProfile(ctx context.Context, profile Profile) error {
	encoded, err := sonic.MarshalString(profile)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.persist", "failed to encode profile", err)
	}
	if err := s.kv.Set(ctx, keyvalue.KeyUserInfo, encoded); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"session.persist", "failed to persist profile", err)
	}
	return nil
}

func (s *Store) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the current machine state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasSession is true only when both token and profile are present.
// Authentication is always recomputed from those two, never stored.
func (s *Store) HasSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.profile != nil
}

// Credits returns the cached credit balance, zero when logged out.
func (s *Store) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return 0
	}
	return s.profile.Credits
}

// DisplayName returns the nickname or the logged-out placeholder.
func (s *Store) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || s.profile.Nickname == "" {
		return "未登录"
	}
	return s.profile.Nickname
}

// Avatar returns the avatar to display: the real upload when present,
// otherwise the deterministic fallback for this identity.
func (s *Store) Avatar() string {
	s.mu.Lock()
	var realURL, seed string
	if s.profile != nil {
		realURL = s.profile.AvatarURL
		if s.profile.ID != 0 {
			seed = strconv.FormatInt(s.profile.ID, 10)
		}
	}
	s.mu.Unlock()
	return avatar.Present(realURL, seed)
}

// CurrentProfile returns a copy of the cached profile.
func (s *Store) CurrentProfile() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}
