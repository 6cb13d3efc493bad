package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/config"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/db"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/server"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/bids"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	var notifier bids.Notifier = hub

	// Redis dipakai supaya notifikasi sampai ke user yang connect di instance lain
	if cfg.RedisEnabled {
		rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("[Redis] not reachable: ", err)
		}

		bridge := realtime.NewRedisBridge(rdb, hub)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Println("[Redis] bridge stopped:", err)
			}
		}()
		notifier = bridge
		log.Println("[Redis] notifications fan out via", cfg.RedisAddr)
	} else {
		log.Println("[Redis] disabled, notifications stay on this instance")
	}

	app := server.New(server.Deps{
		Config:    cfg,
		DB:        gdb,
		Hub:       hub,
		Notifier:  notifier,
		AccessLog: true,
	})

	go func() {
		<-ctx.Done()
		log.Println("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Println("shutdown:", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
