package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"doorwarden/internal/config"
	"doorwarden/internal/db"
	"doorwarden/internal/httpapi"
	"doorwarden/internal/hw"
	"doorwarden/internal/warden/actuator"
	"doorwarden/internal/warden/gateway"
	"doorwarden/internal/warden/notify"
	"doorwarden/internal/warden/presence"
	"doorwarden/internal/warden/session"
	"doorwarden/internal/warden/store"
	"doorwarden/internal/warden/store/sqlite"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "doorwarden ", log.LstdFlags|log.LUTC)

	hasLine := cfg.ChannelSecret != "" && cfg.ChannelToken != "" && cfg.NotifyUserID != ""
	if cfg.Env == "prod" && !hasLine {
		logger.Fatal("LINE_CHANNEL_SECRET, LINE_CHANNEL_ACCESS_TOKEN and LINE_NOTIFY_USER_ID must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit store
	database, err := db.Open(ctx, db.Config{Path: cfg.DBPath})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer database.Close()
	writer := db.NewWriter(database)
	defer writer.Close()
	events := sqlite.NewSessionEventStore(writer)

	// Hardware
	hardware, err := hw.Open(hw.Config{
		PIRPin:    cfg.PIRPin,
		GreenPin:  cfg.GreenPin,
		RedPin:    cfg.RedPin,
		BuzzerPin: cfg.BuzzerPin,
		ServoPin:  cfg.ServoPin,
		RelayPin:  cfg.RelayPin,
		LCDAddr:   cfg.LCDAddr,
	}, logger)
	if err != nil {
		logger.Fatalf("open hardware: %v", err)
	}
	defer hardware.Close()

	// Messaging transport.  Without credentials (dev only) the webhook
	// cannot verify signatures and notifications go to the log.
	var (
		sink    notify.Sink
		replier httpapi.Replier
	)
	secret, token := cfg.ChannelSecret, cfg.ChannelToken
	if !hasLine {
		logger.Printf("LINE credentials not set; notifications are log-only")
		secret, token = "dev-secret", "dev-token"
	}
	bot, err := linebot.New(secret, token)
	if err != nil {
		logger.Fatalf("line client: %v", err)
	}
	if hasLine {
		line := notify.NewLineSink(bot)
		sink, replier = line, line
	} else {
		ls := notify.NewLogSink(logger)
		sink, replier = ls, ls
	}

	// Door output kind
	var door actuator.Door
	switch cfg.DoorKind {
	case "relay":
		door = actuator.NewRelayDoor(hardware.Relay)
	default:
		door = actuator.NewServoDoor(hardware.Servo, cfg.RampDuration, cfg.RampSteps, nil)
	}

	controller := actuator.NewController(actuator.Outputs{
		Door:      door,
		GrantLamp: hardware.Green,
		DenyLamp:  hardware.Red,
		Alarm:     hardware.Buzzer,
		Display:   hardware.Display,
	}, sink, logger, actuator.Config{
		OpenHold: cfg.OpenHold,
		DenyHold: cfg.DenyHold,
	})

	sessions := session.New(cfg.Password, controller, events, logger, cfg.WatchdogDeadline)
	gw := gateway.New(sessions, logger)

	monitor := presence.NewMonitor(hardware.Motion, sessions, hardware.Display, sink, presence.Config{
		AlertTo: cfg.NotifyUserID,
		Settle:  cfg.SettleDelay,
	}, logger)

	pruner := store.NewEventPruner(events, store.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("presence monitor: %v", err)
			stop()
		}
	}()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:  logger,
		Addr:    cfg.HTTPAddr,
		Parser:  bot,
		Replier: replier,
		Gateway: gw,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	// Let an in-flight grant/deny sequence finish so the door is not left
	// mid-travel.
	sessions.Wait()
}
