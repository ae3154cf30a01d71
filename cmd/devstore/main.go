package main

import (
	"context"
	"log"

	"ai-notetaking-session/internal/bootstrap"
	"ai-notetaking-session/internal/config"
	"ai-notetaking-session/internal/model"
	"ai-notetaking-session/internal/server"
	"ai-notetaking-session/internal/tracer"
	"ai-notetaking-session/pkg/database"
)

// devstore is the development note store: the REST counterpart the editing
// agent talks to when no production backend is available.
func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.Document{}, &model.Checkpoint{}); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
