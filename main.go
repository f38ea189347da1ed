package main

import (
	"time"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/routes"
	"github.com/readrally/readrally/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.CheckIn{},
		&models.Message{},
		&models.DailyActivity{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Start background cleanup for expired uploads (best-effort)
	utils.StartOrphanUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
