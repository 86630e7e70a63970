package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"farmwatch/internal/activity"
	apppublic "farmwatch/internal/app/public"
	"farmwatch/internal/config"
	"farmwatch/internal/gameserver"
	"farmwatch/internal/logging"
	"farmwatch/internal/mcpserver"
	"farmwatch/internal/scheduler"
	"farmwatch/internal/stats"
	"farmwatch/internal/statuspush"
	"farmwatch/internal/store"
	httptransport "farmwatch/internal/transport/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	loc, err := cfg.Stats.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone failed")
	}
	window := cfg.Stats.Window(loc)

	if cfg.Server.MigrateOnStart {
		v, err := store.Migrate(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Uint("schema_version", v).Msg("db_migrated")
	}
	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := activity.Clock{Slice: cfg.Stats.SampleSlice, Location: loc}
	recorder := stats.NewRecorder(st, clock)
	sweeper := stats.NewSweeper(st, cfg.Stats.RetentionDays)
	totals := stats.NewTotalTime(st, cfg.Stats.CreditThreshold)
	week := stats.NewCurrentWeek(st, window, cfg.Stats.CreditThreshold)
	archiver := stats.NewWeeklyArchiver(st, window, cfg.Stats.CreditThreshold, cfg.Stats.WeeklyTopMax, cfg.Stats.WeeklyTopLimit)
	graphs := stats.NewGraphs(st, loc)

	limits := apppublic.DefaultLimits()
	limits.Total, limits.Week, limits.LastWeek = cfg.Stats.TotalTopLimit, cfg.Stats.WeeklyTopLimit, cfg.Stats.WeeklyTopLimit
	limits.MonthDays = cfg.Stats.MonthDays
	publicSvc := apppublic.NewService(totals, week, archiver, graphs, limits)

	retry := cfg.Stats.RetryDelay
	jobs := []scheduler.Job{
		{Name: "retention", Run: sweeper.Run, Next: scheduler.Every(cfg.Stats.CleanupInterval), RunAtStart: true, RetryOnError: true, RetryDelay: retry},
		{Name: "total_time", Run: totals.Run, Next: scheduler.Every(cfg.Stats.TotalTimeInterval), RunAtStart: true, RetryOnError: true, RetryDelay: retry},
		{Name: "current_week", Run: week.Run, Next: scheduler.Every(cfg.Stats.WeekRefreshInterval), RunAtStart: true, RetryOnError: true, RetryDelay: retry},
		{Name: "weekly_archive", Run: archiver.Run, Next: scheduler.WeeklyAt(window), RetryDelay: retry},
	}

	api := gameserver.NewClient(cfg.Game.APIBaseURL, cfg.Game.APICode, cfg.Game.HTTPTimeout)
	if cfg.Game.APIEnabled() {
		sampler := gameserver.NewSampler(api, recorder)
		jobs = append(jobs, scheduler.Job{Name: "sampler", Run: sampler.Run, Next: scheduler.SlotAligned(clock), RunAtStart: true, RetryDelay: retry})
	} else {
		log.Warn().Msg("game_api_not_configured_sampler_disabled")
	}

	pushCfg, err := statuspush.ConfigFromPush(cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("push config failed")
	}
	pushMgr := statuspush.NewManager(pushCfg, statuspush.NewStoredMessages(st))
	if pushMgr.Enabled() {
		if err := pushMgr.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("push manager start failed")
		}
		var status statuspush.StatusSource
		if cfg.Game.FTPEnabled() && cfg.Game.APIEnabled() {
			files := gameserver.NewSavegameFetcher(gameserver.NewFTPDialer(cfg.Game), cfg.Game.FTPSavegameDir, cfg.Game.FTPCacheSize, cfg.Game.FTPCacheTTL)
			catalog, err := gameserver.LoadVehicleCatalog(cfg.Game.VehicleCatalog)
			if err != nil {
				log.Fatal().Err(err).Msg("vehicle catalog failed")
			}
			status = gameserver.NewCollector(api, files, cfg.Game.FarmID, catalog)
		}
		publisher := statuspush.NewPublisher(pushMgr, status, week, archiver, totals, statuspush.PublisherLimits{
			Week:     cfg.Stats.WeeklyTopLimit,
			LastWeek: cfg.Stats.WeeklyTopLimit,
			Total:    cfg.Stats.TotalTopLimit,
		}, cfg.Server.PublicBaseURL, loc)
		jobs = append(jobs, scheduler.Job{Name: "status_panels", Run: publisher.Run, Next: scheduler.Every(cfg.Game.StatusInterval), RunAtStart: true, RetryDelay: retry})
	}

	r := httptransport.NewRouter(st, publicSvc, mcpserver.New(publicSvc, version))
	if cfg.Server.LogRoutes {
		httptransport.LogRoutes(r)
	}
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx, jobs...)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("farmwatch stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("farmwatch stopped")
}
