// cmd/server/main.go
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/redwoodtel/callwave-backend/internal/config"
	"github.com/redwoodtel/callwave-backend/internal/controller"
	"github.com/redwoodtel/callwave-backend/internal/db"
	"github.com/redwoodtel/callwave-backend/internal/events"
	"github.com/redwoodtel/callwave-backend/internal/handler"
	"github.com/redwoodtel/callwave-backend/internal/repository"
	"github.com/redwoodtel/callwave-backend/internal/service"
	"github.com/redwoodtel/callwave-backend/internal/spool"
	"github.com/redwoodtel/callwave-backend/internal/tasks"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.FromEnv()

	// Init DB
	db.Init(cfg)

	for _, dir := range []string{cfg.SoundsDir, cfg.RecordingsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	broadcastRepo := &repository.BroadcastRepository{DB: db.DB}
	callRepo := &repository.CallRepository{DB: db.DB}
	groupRepo := &repository.GroupRepository{DB: db.DB}

	var bus events.Bus = events.NopBus{}
	if cfg.AMQPURL != "" {
		amqpBus, err := events.NewAMQPBus(cfg.AMQPURL)
		if err != nil {
			log.Println("⚠️ Event broker unavailable, observer events disabled:", err)
		} else {
			defer amqpBus.Close()
			bus = amqpBus
		}
	}

	audioResolver := &service.AudioResolver{
		TTSCommand:     cfg.TTSCommand,
		ConvertCommand: cfg.ConvertCommand,
		StagingDir:     cfg.StagingDir,
		SoundsDir:      cfg.SoundsDir,
		Runner:         service.ExecRunner{},
	}

	dispatcher := &service.CallDispatcher{
		Calls:           callRepo,
		Spool:           spool.NewPublisher(cfg.StagingDir, cfg.SpoolDir),
		Trunk:           cfg.SIPTrunk,
		DefaultCallerID: cfg.DefaultCallerID,
	}

	callService := &service.CallService{
		Audio:      audioResolver,
		Dispatcher: dispatcher,
		Bus:        bus,
	}

	broadcastService := &service.BroadcastService{
		Broadcasts:   broadcastRepo,
		Recipients:   &service.RecipientResolver{GroupRepo: groupRepo},
		Audio:        audioResolver,
		Dispatcher:   dispatcher,
		Tasks:        tasks.NewRegistry(),
		Bus:          bus,
		PaceInterval: cfg.PaceInterval,
	}

	statusService := &service.StatusService{
		Calls:      callRepo,
		Broadcasts: broadcastRepo,
	}

	callController := &controller.CallController{
		CallService:   callService,
		StatusService: statusService,
	}
	broadcastController := &controller.BroadcastController{
		BroadcastService: broadcastService,
	}
	groupHandler := &handler.GroupHandler{Repo: groupRepo}
	recordingHandler := &handler.RecordingHandler{Dir: cfg.RecordingsDir}

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"service": "CallWave API",
			"status":  "running",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Call routes
	r.Post("/api/call", callController.PlaceCall)
	r.Post("/api/call_status", callController.CallStatus)
	r.Get("/api/call_history", callController.CallHistory)

	// Broadcast routes
	r.Post("/api/broadcast", broadcastController.CreateBroadcast)
	r.Get("/api/broadcasts", broadcastController.ListBroadcasts)

	// Group routes
	r.Post("/api/groups", groupHandler.CreateGroupHandler)
	r.Get("/api/groups", groupHandler.ListGroupsHandler)
	r.Delete("/api/groups/{name}", groupHandler.DeleteGroupHandler)

	// Recording routes
	r.Post("/api/recordings", recordingHandler.UploadRecordingHandler)
	r.Get("/api/recordings", recordingHandler.ListRecordingsHandler)
	r.Get("/api/recordings/{name}", recordingHandler.StreamRecordingHandler)
	r.Put("/api/recordings/{name}", recordingHandler.RenameRecordingHandler)
	r.Delete("/api/recordings/{name}", recordingHandler.DeleteRecordingHandler)

	log.Println("🚀 Server running on", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
