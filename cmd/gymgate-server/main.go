package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/thejerf/suture/v4"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/db"
	"github.com/fitaccess/gymgate/internal/gymgate/service"
	"github.com/fitaccess/gymgate/internal/gymgate/store/sqlite"
	"github.com/fitaccess/gymgate/internal/httpapi"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/realtime"
	"github.com/fitaccess/gymgate/internal/transport"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gymgate-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, db.Config{Path: cfg.Database.Path, Env: cfg.Database.Env})
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Database.Env == "dev" && cfg.Database.SeedDev {
		if err := db.SeedDev(ctx, database); err != nil {
			return err
		}
	}

	writer := db.NewWorker(database)
	defer writer.Close()

	deviceStore := sqlite.NewDeviceStore(database, writer)
	eventStore := sqlite.NewAccessEventStore(database, writer)
	commandStore := sqlite.NewCommandStore(database, writer)
	syncStore := sqlite.NewSyncStore(database, writer)
	attendanceStore := sqlite.NewAttendanceStore(database, writer)
	personStore := sqlite.NewPersonStore(database, writer)

	hub := realtime.NewHub()

	var commandTransport transport.CommandTransport
	var mqttTransport *transport.MQTTTransport
	if cfg.MQTT.Enabled {
		mqttTransport = transport.NewMQTTTransport(cfg.MQTT)
		commandTransport = mqttTransport
	} else {
		commandTransport = transport.LogTransport{}
	}

	accessLog := service.NewAccessLog(eventStore, hub)
	registry := service.NewDeviceRegistry(deviceStore)
	heartbeats := service.NewHeartbeatService(deviceStore, syncStore)
	dispatcher := service.NewCommandDispatcher(deviceStore, commandStore, personStore, accessLog, commandTransport, hub)
	syncQueue := service.NewSyncQueue(deviceStore, syncStore, personStore)
	attendance := service.NewAttendanceService(personStore, attendanceStore, accessLog)
	sweeper := service.NewLivenessSweeper(deviceStore, cfg.Liveness)
	retrier := service.NewSyncRetrier(syncStore, cfg.SyncRetry)

	server := httpapi.NewServer(httpapi.Dependencies{
		Config:     cfg,
		Registry:   registry,
		Heartbeats: heartbeats,
		Dispatcher: dispatcher,
		AccessLog:  accessLog,
		SyncQueue:  syncQueue,
		Attendance: attendance,
		Hub:        hub,
	})

	root := suture.New("gymgate", suture.Spec{
		EventHook: func(ev suture.Event) {
			logging.Warn().
				Str("event", ev.String()).
				Msg("supervisor event")
		},
		FailureThreshold: 5,
		FailureDecay:     30,
	})
	root.Add(hub)
	root.Add(sweeper)
	root.Add(retrier)
	if mqttTransport != nil {
		root.Add(mqttTransport)
	}
	root.Add(server)

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("db", cfg.Database.Path).
		Bool("mqtt", cfg.MQTT.Enabled).
		Msg("gymgate server starting")

	return root.Serve(ctx)
}
