package main

import (
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/app"
	"github.com/Phairoj-Ja/student-score-web/internal/handlers"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start: %v", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	handlers.NewHandler(service).Routes(mux)

	server := &http.Server{
		Addr:         service.Config.Server.Port,
		Handler:      mux,
		ReadTimeout:  service.Config.ReadTimeout(),
		WriteTimeout: service.Config.WriteTimeout(),
	}

	logger.Info.Printf("Starting score server on %s", server.Addr)
	logger.Debug.Printf("Session backend: %s", service.Config.Sessions.Backend)
	logger.Debug.Printf("Scoring layout: %+v", service.Layout)
	if err := server.ListenAndServe(); err != nil {
		logger.Error.Fatalf("Score server failed: %v", err)
	}
}
