package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nekoden/nekoden/backend"
	"github.com/nekoden/nekoden/backend/handlers"
	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/internal/gateways/discord"
	"github.com/nekoden/nekoden/internal/gateways/socket"
	"github.com/nekoden/nekoden/internal/gateways/spaces"
	"github.com/nekoden/nekoden/internal/identity"
	"github.com/nekoden/nekoden/nekoden"
	"github.com/nekoden/nekoden/nekoden/config"
	"github.com/nekoden/nekoden/nekoden/logger"
	"github.com/nekoden/nekoden/nekoden/utils"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP API, the websocket server and the background loops",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCMD)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.LogSystem("Starting nekoden",
		"version", version,
		"storage", cfg.Storage.Driver)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	state, err := pet.Bootstrap(ctx, st.pet, time.Now())
	if err != nil {
		return err
	}
	logger.LogSystem("Global state ready",
		"mood", state.Current.String(),
		"resting", state.IsResting)

	hub := socket.NewHub()

	logOpts := []actionlog.Option{actionlog.WithRetention(cfg.ActionLog.Retention.Std())}
	if cfg.Discord.WebhookURL != "" {
		mirror, err := discord.NewMirror(cfg.Discord.WebhookURL)
		if err != nil {
			return err
		}
		defer mirror.Close(context.Background())
		logOpts = append(logOpts, actionlog.WithMirror(mirror))
		logger.LogSystem("Mirroring action log to discord")
	}
	logs := actionlog.NewService(st.logs, hub, logOpts...)

	settings := pet.DefaultSettings()
	settings.TickInterval = cfg.Pet.TickInterval.Std()
	settings.TickTimeout = cfg.Pet.TickTimeout.Std()
	settings.RestDuration = cfg.Pet.RestDuration.Std()
	settings.WakeDwell = cfg.Pet.WakeDwell.Std()
	restLock := pet.NewRestLock(st.pet, logs, hub, settings)
	machine := pet.NewStateMachine(st.pet, logs, hub, settings)

	avatars := rewards.NewDefaultAvatars(cfg.Rewards.DefaultAvatars)
	loadSpacesAvatars(ctx, cfg.Spaces, avatars)

	ledger := rewards.NewLedger(st.rewards, avatars, nil)
	guard := rewards.NewCooldownGuard(st.rewards, cfg.Rewards.Cooldown.Std(), cfg.Rewards.FreeRespinPrizes, nil)
	service := rewards.NewService(guard, ledger, rewards.NewCatalogue(prizesFromConfig(cfg.Rewards.Prizes)))

	verifier, err := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, nil)
	if err != nil {
		return err
	}

	bpm := utils.NewBackgroundProcessManager(ctx)
	processes := []struct {
		name, description string
		fn                func(context.Context)
	}{
		{"pet-tick", "autonomous mood cycle and rest expiry", machine.Run},
		{"log-sweep", "action log retention", func(ctx context.Context) {
			logs.Run(ctx, cfg.ActionLog.SweepInterval.Std(), config.DefaultQueryTimeout)
		}},
		{"reward-sweep", "expired reward cleanup", func(ctx context.Context) {
			ledger.RunSweeper(ctx, cfg.Rewards.SweepInterval.Std(), config.DefaultQueryTimeout)
		}},
	}
	for _, p := range processes {
		if err = bpm.StartProcess(p.name, p.description, p.fn); err != nil {
			return err
		}
	}

	app := backend.NewApp(&handlers.WebApp{
		Verifier: verifier,
		Rewards:  service,
		Ledger:   ledger,
		State:    machine,
		Logs:     logs,
		Store:    st.pinger,
		Version:  version,
	}, cfg.Web.AllowOrigins)

	mux := http.NewServeMux()
	mux.Handle("/ws", socket.NewHandler(hub, socket.Deps{
		Verifier: verifier,
		Rest:     restLock,
		State:    machine,
		Logs:     logs,
	}, cfg.Web.AllowOrigins))
	wsServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.SocketPort)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpAddr := net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.LogSystem("HTTP server listening", "address", httpAddr)
		if err := app.Listen(httpAddr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.LogSystem("Websocket server listening", "address", wsServer.Addr)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.LogSystem("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
		defer cancel()

		hub.Close()
		return errors.Join(
			app.ShutdownWithContext(shutdownCtx),
			wsServer.Shutdown(shutdownCtx),
		)
	})

	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	if shutdownErr := bpm.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("Background processes did not stop in time",
			slog.String("type", "sys"),
			slog.Any("error", shutdownErr))
	}

	if err != nil {
		return err
	}
	logger.LogSystem("Shutdown complete")
	return nil
}

// loadSpacesAvatars swaps the configured default avatars for the bucket
// listing when Spaces is configured. Failures keep the configured list.
func loadSpacesAvatars(ctx context.Context, c nekoden.SpacesConfig, avatars *rewards.DefaultAvatars) {
	if !c.Enabled() {
		return
	}

	source, err := spaces.NewAvatarSource(ctx, c)
	if err != nil {
		slog.Warn("Spaces avatar source unavailable",
			slog.String("type", "sys"),
			slog.Any("error", err))
		return
	}

	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err = source.Refresh(refreshCtx, avatars); err != nil {
		slog.Warn("Failed to list avatars from spaces",
			slog.String("type", "sys"),
			slog.Any("error", err))
	}
}

func prizesFromConfig(prizes []nekoden.PrizeConfig) []rewards.Prize {
	if len(prizes) == 0 {
		return rewards.DefaultPrizes()
	}
	out := make([]rewards.Prize, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, rewards.Prize{
			Name:     strings.TrimSpace(p.Name),
			Effect:   p.Effect,
			Value:    p.Value,
			Duration: p.Duration.Std(),
		})
	}
	return out
}
