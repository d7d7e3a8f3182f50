package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rengarajkamatchinathan/ig-fe/app"
	"github.com/rengarajkamatchinathan/ig-fe/cache"
	"github.com/rengarajkamatchinathan/ig-fe/client"
	"github.com/rengarajkamatchinathan/ig-fe/credentials"
	"github.com/rengarajkamatchinathan/ig-fe/handlers"
	"github.com/rengarajkamatchinathan/ig-fe/services"
	"github.com/rengarajkamatchinathan/ig-fe/sweeper"
)

var config app.ServerConfig

// Server wires the console: backend client, orchestration services, status
// sweeper and the HTTP routes the browser consumes.
type Server struct {
	Router  *mux.Router
	Sweeper *sweeper.StatusSweeper
}

func NewServer(config app.ServerConfig) (*Server, error) {
	api := client.NewClient(config.APIBaseURL, config.APIToken)

	store, err := cache.NewStore(config.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache initialization failed: %s", err)
	}

	resolver := credentials.NewResolver(api)
	tracker := services.NewStatusTracker()
	output := services.NewOutputBuffer()

	operations := services.NewOperationService(services.NewAPIStreamer(api), resolver, tracker, output)
	history := services.NewHistoryService(api)
	projects := services.NewProjectService(api, store)

	statusSweeper, err := sweeper.NewStatusSweeper(config.SweepInterval, config.StatusCooldown, tracker)
	if err != nil {
		return nil, fmt.Errorf("sweeper initialization failed: %s", err)
	}

	// Routing
	router := mux.NewRouter()
	handlers.ServeOperationResources(router, operations, history, config.OrgID, config.UserID)
	handlers.ServeHistoryResources(router, history, config.OrgID, config.UserID)
	handlers.ServeCredentialResources(router, resolver, config.OrgID, config.UserID)
	handlers.ServeProjectResources(router, projects, config.OrgID, config.UserID)

	return &Server{
		Router:  router,
		Sweeper: statusSweeper,
	}, nil
}

func main() {
	// Server configuration
	if err := app.LoadServerConfig(&config, "."); err != nil {
		panic(fmt.Errorf("Invalid application configuration: %s", err))
	}

	// Logging
	if err := app.InitLogger(config.Logging); err != nil {
		panic(fmt.Errorf("Logging Initialization Failed: %s", err))
	}

	server, err := NewServer(config)
	if err != nil {
		panic(fmt.Errorf("Server Initialization Failed: %s", err))
	}

	server.Sweeper.StartSweeping()

	// Start the server
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.ServerPort), server.Router); err != nil {
		server.Sweeper.Stop()
		panic(fmt.Errorf("Server Failed: %s", err))
	}
}
