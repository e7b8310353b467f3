package main

import (
	"time"

	"github.com/rorychadbourne-alt/gratitude-sub000/config"
	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/push"
	"github.com/rorychadbourne-alt/gratitude-sub000/routes"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.GratitudeEntry{},
		&models.EntryShare{},
		&models.Circle{},
		&models.CircleMember{},
		&models.WeeklyStreak{},
		&models.CommunityStreak{},
	)

	// Subscriptions are process-local and lost on restart; clients re-register
	// through the subscribe endpoint.
	store := push.NewStore()
	sender := push.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)

	r := routes.SetupRouter(db, store, sender)

	// Optional in-process sweeper for deployments without an external cron
	if cfg.SweepIntervalMinutes > 0 {
		push.StartSweeper(store, sender, time.Duration(cfg.SweepIntervalMinutes)*time.Minute, utils.Sugar)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
