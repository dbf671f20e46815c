package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/alerts"
	"github.com/gosuda/ghostmode/internal/auth"
	"github.com/gosuda/ghostmode/internal/config"
	"github.com/gosuda/ghostmode/internal/domain"
	ghostslack "github.com/gosuda/ghostmode/internal/messenger/slack"
	"github.com/gosuda/ghostmode/internal/moderation"
	"github.com/gosuda/ghostmode/internal/notify"
	"github.com/gosuda/ghostmode/internal/server"
	"github.com/gosuda/ghostmode/internal/store/memstore"
	"github.com/gosuda/ghostmode/internal/store/postgres"
	redisstore "github.com/gosuda/ghostmode/internal/store/redis"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

// repositories is the surface shared by the postgres and in-memory stores.
type repositories interface {
	Profiles() domain.ProfileRepository
	MediaContent() domain.MediaContentRepository
	DatingAds() domain.DatingAdRepository
	DirectMessages() domain.DirectMessageRepository
	LiveStreams() domain.LiveStreamRepository
	Calls() domain.CallRepository
	Reports() domain.ReportRepository
	FlaggedContent() domain.FlaggedContentRepository
	Notifications() domain.NotificationRepository
	Audit() domain.AuditRepository
	AdminUsers() domain.AdminUserRepository
}

// signals carries table push signals between the dispatcher and live feeds.
type signals interface {
	moderation.Publisher
	activity.Subscriber
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("GHOST_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("GHOST_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	health := map[string]server.Pinger{}

	var (
		repos      repositories
		sigs       signals
		watchState domain.SurveillanceStore
	)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Database.MaxConns > math.MaxInt32 {
			return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
		if err != nil {
			return err
		}
		defer store.Close()
		repos = store
		health["postgres"] = store

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		mem := memstore.New()
		repos = mem
		watchState = mem.Surveillance()
	}

	if cfg.Redis.Enabled {
		pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer pubsub.Close()
		sigs = pubsub
		watchState = redisstore.NewSurveillanceStore(pubsub.Client(), cfg.Surveillance.StateTTL)
		health["redis"] = pubsub
	} else {
		sigs = memstore.NewBus()
	}

	if watchState == nil {
		// Postgres without Redis: surveillance state lives in this process only.
		watchState = memstore.New().Surveillance()
	}

	authSvc := auth.NewService(repos.AdminUsers(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if cfg.Bootstrap.Email != "" {
		if err := authSvc.Bootstrap(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password, cfg.Bootstrap.Name); err != nil {
			return err
		}
	}

	profiles := activity.NewProfileDirectory(repos.Profiles(), cfg.Activity.ProfileCacheLen, cfg.Activity.ProfileCacheTTL)
	opts := activity.Options{Window: cfg.Activity.Window, Limit: cfg.Activity.Limit}

	content := activity.NewContentSource(repos.MediaContent(), profiles)
	ads := activity.NewBodyContactSource(repos.DatingAds(), profiles)
	agg := activity.NewAggregator(opts,
		activity.NewStreamSource(repos.LiveStreams(), profiles),
		activity.NewCallSource(repos.Calls(), profiles),
		activity.NewChatSource(repos.DirectMessages(), profiles),
		ads,
		content,
	)

	resolver := activity.NewResolver(activity.Repositories{
		Streams:  repos.LiveStreams(),
		Calls:    repos.Calls(),
		Messages: repos.DirectMessages(),
		Ads:      repos.DatingAds(),
		Media:    repos.MediaContent(),
	}, profiles)

	dispatchOpts := []moderation.Option{
		moderation.WithPublisher(sigs, redisstore.TableChannel),
		moderation.WithProfileInvalidation(profiles.Forget),
	}
	if cfg.Slack.BotToken != "" {
		messenger := ghostslack.NewSlackMessenger(slacklib.New(cfg.Slack.BotToken))
		registry := notify.NewRegistry()
		registry.Register(messenger)
		dispatchOpts = append(dispatchOpts, moderation.WithAnnouncer(
			notify.New(registry, notify.Route{Platform: messenger.Platform(), ChannelID: cfg.Slack.OpsChannel}),
		))
		log.Info().Str("channel", cfg.Slack.OpsChannel).Msg("slack ops broadcast enabled")
	}

	dispatcher := moderation.NewDispatcher(moderation.Stores{
		Profiles:      repos.Profiles(),
		Media:         repos.MediaContent(),
		Ads:           repos.DatingAds(),
		Messages:      repos.DirectMessages(),
		Streams:       repos.LiveStreams(),
		Calls:         repos.Calls(),
		Reports:       repos.Reports(),
		Notifications: repos.Notifications(),
		Audit:         repos.Audit(),
	}, dispatchOpts...)

	srv := server.New(ctx, cfg, server.Deps{
		Auth:         authSvc,
		Feed:         agg,
		Catalog:      activity.NewCatalog(content, ads, opts),
		Alerts:       alerts.NewBuilder(repos.Reports(), repos.FlaggedContent(), profiles, cfg.Activity.AlertLimit),
		Resolver:     resolver,
		Dispatcher:   dispatcher,
		Surveillance: surveillance.NewController(watchState, repos.Audit()),
		Audit:        repos.Audit(),
		Watcher:      activity.NewWatcher(agg, sigs, redisstore.TableChannel, cfg.Activity.Settle),
		Health:       health,
	})

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store.Driver).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
