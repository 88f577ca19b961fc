// Package bootstrap wires the client SDK: configuration, logging, storage,
// the keyvalue store, the request gateway, the login selector, and finally
// the session store, in dependency order.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"skycanvas-client-go/internal/domain/eventbus"
	"skycanvas-client-go/internal/domain/gateway"
	"skycanvas-client-go/internal/domain/keyvalue"
	"skycanvas-client-go/internal/domain/login"
	"skycanvas-client-go/internal/domain/session"
	platformconfig "skycanvas-client-go/internal/platform/config"
	platformerrors "skycanvas-client-go/internal/platform/errors"
	platformlogging "skycanvas-client-go/internal/platform/logging"
	platformstorage "skycanvas-client-go/internal/platform/storage"
)

// Options carries the host-supplied collaborators. Issuer and Prompter
// bridge into the platform shell; the demo binary passes static ones.
type Options struct {
	ConfigPath string
	Issuer     login.CodeIssuer
	Prompter   login.ConsentPrompter
}

// App is the assembled client SDK.
type App struct {
	Config  *platformconfig.Config
	Logger  *platformlogging.Logger
	Bus     eventbus.Bus
	KV      keyvalue.Store
	Gateway *gateway.Client
	Session *session.Store

	async *eventbus.AsyncBus
	db    *gorm.DB
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	opts       Options
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	db         *gorm.DB
	kv         keyvalue.Store
	bus        eventbus.Bus
	async      *eventbus.AsyncBus
	gateway    *gateway.Client
	selector   *login.Selector
	session    *session.Store
}

// New runs the init sequence and returns the assembled App.
func New(ctx context.Context, opts Options) (*App, error) {
	state := &appState{opts: opts}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return nil, err
	}

	return &App{
		Config:  state.config,
		Logger:  state.logger,
		Bus:     state.bus,
		KV:      state.kv,
		Gateway: state.gateway,
		Session: state.session,
		async:   state.async,
		db:      state.db,
	}, nil
}

// Close releases everything the init sequence acquired, in reverse order.
func (a *App) Close() error {
	var firstErr error

	if a.async != nil {
		a.async.Stop()
	}
	if a.KV != nil {
		if err := a.KV.Close(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if a.Logger != nil {
		a.Logger.Close()
	}
	return firstErr
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	for _, step := range steps {
		if step.Execute == nil {
			return platformerrors.New(platformerrors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}
			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
	}
	return nil
}

// InitGraph lists the init steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{ID: "config:load", Title: "Load configuration", Kind: platformerrors.KindConfig, Execute: loadConfigStep},
		{ID: "logging:init-provider", Title: "Initialise logging provider", Kind: platformerrors.KindBootstrap, Execute: initLoggingStep},
		{ID: "storage:init-database", Title: "Initialise database", Kind: platformerrors.KindStorage, Execute: initDatabaseStep},
		{ID: "keyvalue:init-store", Title: "Initialise keyvalue store", Kind: platformerrors.KindStorage, Execute: initKeyValueStep},
		{ID: "eventbus:init", Title: "Initialise event bus", Kind: platformerrors.KindBootstrap, Execute: initEventBusStep},
		{ID: "gateway:init-client", Title: "Initialise request gateway", Kind: platformerrors.KindBootstrap, Execute: initGatewayStep},
		{ID: "login:init-selector", Title: "Initialise login selector", Kind: platformerrors.KindPlatform, Execute: initSelectorStep},
		{ID: "session:init-store", Title: "Initialise session store", Kind: platformerrors.KindBootstrap, Execute: initSessionStep},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().
		WithDotEnv(true).
		WithPath(state.opts.ConfigPath).
		Load()
	if err != nil {
		return err
	}
	if err := platformconfig.Validate(result.Config); err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "logging:init-provider", "config not loaded")
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap,
			"logging:init-provider", "failed to initialize logging provider", err)
	}
	state.logger = logger
	state.logger.Info("[bootstrap] 日志模块就绪 [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	driver := strings.ToLower(strings.TrimSpace(state.config.KeyValue.Driver))
	if driver != keyvalue.DriverSQLite && driver != "" {
		return nil
	}

	db, err := platformstorage.Open(state.config.KeyValue.SQLite.Path)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"storage:init-database", "failed to open database", err)
	}
	state.db = db
	state.logger.Info("[bootstrap] 数据库就绪 %s", state.config.KeyValue.SQLite.Path)
	return nil
}

func initKeyValueStep(_ context.Context, state *appState) error {
	cfg := keyvalue.Config{
		Driver:    strings.ToLower(strings.TrimSpace(state.config.KeyValue.Driver)),
		Namespace: state.config.KeyValue.Namespace,
	}
	switch cfg.Driver {
	case keyvalue.DriverRedis:
		cfg.Redis = &keyvalue.RedisConfig{
			Addr:     state.config.KeyValue.Redis.Addr,
			Username: state.config.KeyValue.Redis.Username,
			Password: state.config.KeyValue.Redis.Password,
			DB:       state.config.KeyValue.Redis.DB,
			Prefix:   state.config.KeyValue.Redis.Prefix,
		}
	case keyvalue.DriverMemory:
	default:
		cfg.SQLite = &keyvalue.SQLiteConfig{Path: state.config.KeyValue.SQLite.Path}
	}

	store, err := keyvalue.New(cfg, keyvalue.Dependencies{SQLiteDB: state.db})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"keyvalue:init-store", "failed to create keyvalue store", err)
	}
	state.kv = store
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	state.bus = eventbus.New()
	state.async = eventbus.NewAsync(2)

	// Presentation sinks live on the async bus so slow subscribers never
	// block the session core; the sync bus forwards into it.
	logger := state.logger
	sinks := map[string]interface{}{
		eventbus.TopicToast: func(msg string) {
			logger.Info("[session] toast: %s", msg)
		},
		eventbus.TopicNavigateLogin: func() {
			logger.Info("[session] navigating to login surface")
		},
		eventbus.TopicSessionActive: func(nickname string, credits int) {
			logger.Info("[session] active: %s (credits=%d)", nickname, credits)
		},
		eventbus.TopicSessionExpired: func() {
			logger.Warn("[session] session expired, credentials cleared")
		},
	}
	for topic, handler := range sinks {
		if err := state.async.Subscribe(topic, handler); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap,
				"eventbus:init", fmt.Sprintf("failed to subscribe %s", topic), err)
		}
	}

	async := state.async
	forwards := map[string]interface{}{
		eventbus.TopicToast: func(msg string) {
			async.Publish(eventbus.TopicToast, msg)
		},
		eventbus.TopicNavigateLogin: func() {
			async.Publish(eventbus.TopicNavigateLogin)
		},
		eventbus.TopicSessionActive: func(nickname string, credits int) {
			async.Publish(eventbus.TopicSessionActive, nickname, credits)
		},
		eventbus.TopicSessionExpired: func() {
			async.Publish(eventbus.TopicSessionExpired)
		},
	}
	for topic, handler := range forwards {
		if err := state.bus.Subscribe(topic, handler); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap,
				"eventbus:init", fmt.Sprintf("failed to subscribe %s", topic), err)
		}
	}
	return nil
}

func initGatewayStep(_ context.Context, state *appState) error {
	state.gateway = gateway.New(gateway.Config{
		BaseURL: state.config.API.BaseURL,
		Timeout: state.config.API.Timeout,
	}, tokenSourceFunc(func() string {
		if state.session == nil {
			return ""
		}
		return state.session.Token()
	}), state.logger)
	return nil
}

func initSelectorStep(_ context.Context, state *appState) error {
	selector, err := login.NewSelector(login.SelectorOptions{
		Platform: state.config.Platform.Name,
		Issuer:   state.opts.Issuer,
		Prompter: state.opts.Prompter,
		Exchange: login.NewExchanger(state.gateway),
		KV:       state.kv,
		Logger:   state.logger,
	})
	if err != nil {
		return err
	}
	state.selector = selector
	return nil
}

func initSessionStep(ctx context.Context, state *appState) error {
	store, err := session.NewStore(ctx, session.Options{
		KV:       state.kv,
		API:      session.NewAuthAPI(state.gateway),
		Selector: state.selector,
		Bus:      state.bus,
		Logger:   state.logger,
	})
	if err != nil {
		return err
	}
	state.session = store
	// 401 teardown routes back into the session store.
	state.gateway.SetInvalidator(store)
	return nil
}

// tokenSourceFunc adapts a closure to gateway.TokenSource. The session
// store exists only after the gateway, so the token is read lazily.
type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }
