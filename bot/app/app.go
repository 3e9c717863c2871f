// Package app assembles the bot from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/signalbot/bot/admin"
	"github.com/m3rciful/signalbot/bot/analysis"
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/config"
	"github.com/m3rciful/signalbot/bot/dailyreset"
	"github.com/m3rciful/signalbot/bot/handlers"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/core/bootstrap"
	corecmd "github.com/m3rciful/signalbot/core/cmd"
	"github.com/m3rciful/signalbot/core/httpapi"
	"github.com/m3rciful/signalbot/core/logger"
	coretelegram "github.com/m3rciful/signalbot/core/telegram"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"
	"github.com/m3rciful/signalbot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

const rateLimitedText = "⏳ Too many requests. Please slow down."

// App holds the wired bot.
type App struct {
	cfg      *config.Config
	boot     *bootstrap.Result
	store    session.Store
	closers  []func() error
	clock    session.Clock
	policy   *catalog.Policy
	handlers *handlers.Handlers

	dispatcher *analysis.Dispatcher
	admin      *admin.Service
	scheduler  *dailyreset.Scheduler
	ops        *httpapi.Server
}

// Bootstrap adapts New to the command runner.
func Bootstrap(ctx context.Context, cc corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := cc.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", cc)
	}
	a, err := New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// New initializes logging and storage and builds every component. boot
// may carry hook overrides; its Config and Database are set here.
func New(ctx context.Context, cfg *config.Config, boot bootstrap.Options) (*App, error) {
	boot.Config = cfg.CoreConfig()
	boot.Database = nil
	if cfg.Storage.Backend == config.BackendDatabase {
		boot.Database = &cfg.Storage.Database
	}
	res, err := bootstrap.Run(ctx, boot)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		boot:   res,
		clock:  session.NewClock(cfg.Schedule.Location()),
		policy: catalog.Default(),
	}
	store, closeStore, err := openStore(ctx, cfg.Storage, res.DB)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	a.store = store
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}
	a.closers = append(a.closers, res.Close)

	a.dispatcher = analysis.NewDispatcher(
		analysis.NewClient(cfg.Analysis.URL, cfg.Analysis.Timeout),
		nil,
		cfg.Analysis.StageDelay,
		cfg.Analysis.PlanDetails,
	)
	a.admin = admin.New(admin.Options{
		Store:    store,
		Clock:    a.clock,
		IsAdmin:  cfg.Telegram.IsAdmin,
		Interval: cfg.Broadcast.Interval,
	})
	a.handlers = handlers.New(handlers.Options{
		Policy: a.policy,
		Renderer: &render.Renderer{
			Policy:      a.policy,
			UpgradeURL:  cfg.Billing.UpgradeURL,
			SelfUpgrade: cfg.Billing.SelfUpgrade,
		},
		Dispatcher: a.dispatcher,
		Admin:      a.admin,
		Clock:      a.clock,
	})

	hour, minute := cfg.Schedule.ResetClock()
	a.scheduler = dailyreset.NewScheduler(store, a.clock, hour, minute)

	if cfg.Ops.Listen != "" {
		a.ops = httpapi.New(httpapi.Options{
			Listen: cfg.Ops.Listen,
			Token:  cfg.Ops.Token,
			Stats: func(ctx context.Context) (any, error) {
				return a.admin.Stats(ctx)
			},
		})
	}

	logger.Info(ctx, "app", "app.wired",
		slog.String("storage", cfg.Storage.Backend),
		slog.String("timezone", cfg.Schedule.Timezone),
		slog.String("reset_at", cfg.Schedule.ResetAt),
		slog.Bool("ops", a.ops != nil),
	)
	return a, nil
}

// openStore builds the configured session backend. The returned func, if
// any, releases it.
func openStore(ctx context.Context, cfg config.StorageConfig, db *sqlx.DB) (session.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil, nil
	case config.BackendDatabase:
		if db == nil {
			return nil, nil, fmt.Errorf("app: database backend without a connection")
		}
		return session.NewSQLStore(db), nil, nil
	case config.BackendRedis:
		rs, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	default:
		fs, err := session.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	}
}

// TelegramRunOptions wires middlewares, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	core := a.cfg.CoreConfig()
	mws := coretelegram.DefaultMiddlewares(core, onRateLimited)
	mws = append(mws, coretelegram.Middleware{
		Name: "session",
		Use: session.Middleware(session.MiddlewareOptions{
			Store: a.store,
			Clock: a.clock,
			AIIDs: a.policy.AIIDs(),
		}),
	})

	routes := []coretelegram.Route{router.CallbackRoute(reg)}
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       a.admin.IsAdmin,
		OnAdminReject: a.handlers.DenyCommand,
	})...)
	routes = append(routes, router.MessageRoutes(a.handlers, reg, router.MessageOptions{})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return tghelpers.Toast(c, rateLimitedText)
	}
	return c.Send(rateLimitedText)
}

func (a *App) start(ctx context.Context, rt coretelegram.Runtime) error {
	a.dispatcher.SetMessenger(rt.Bot)
	a.admin.SetCopier(rt.Bot)
	if a.ops != nil {
		if err := a.ops.Start(); err != nil {
			return fmt.Errorf("app: ops server: %w", err)
		}
	}
	a.scheduler.Start()
	return nil
}

func (a *App) stop(ctx context.Context, _ coretelegram.Runtime) error {
	a.scheduler.Stop()
	if a.ops != nil {
		return a.ops.Shutdown(ctx)
	}
	return nil
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
