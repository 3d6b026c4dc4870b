package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/telemeet/roomgw/internal/bridge"
	"github.com/telemeet/roomgw/internal/config"
	"github.com/telemeet/roomgw/janus"
	"github.com/telemeet/roomgw/videoroom"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	sess, err := janus.Connect(ctx, cfg.GatewayURL, janus.Options{
		APISecret: cfg.APISecret,
		KeepAlive: cfg.KeepAlive,
	})
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.GatewayURL).Msg("gateway connect failed")
	}
	defer sess.Close()

	room, err := videoroom.Attach(ctx, sess)
	if err != nil {
		log.Fatal().Err(err).Msg("videoroom attach failed")
	}

	// Drain unsolicited notifications so the management handle never drops
	// them as a slow consumer.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-room.Events():
				log.Info().Str("module", "main").Str("event", string(evt.Name)).Msg("gateway notification")
			}
		}
	}()

	r := bridge.SetupRouter(cfg, room)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("roomgw bridge started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
