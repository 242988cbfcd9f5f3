package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/api"
	"github.com/pa-prabumulih/sicantik-api/api/scheduler"
	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/config"
	"github.com/pa-prabumulih/sicantik-api/databases"
	"github.com/pa-prabumulih/sicantik-api/models"
)

// App stores the router, registry and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Registry *archive.Registry
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	c := Case{Registry: a.Registry}
	s := Search{Registry: a.Registry}
	m := Minutasi{Registry: a.Registry}
	d := Document{Registry: a.Registry}
	live := Live{Registry: a.Registry}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(a.middlewareDB().CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	// front-desk lookups stay open
	apiCreate.Handle("/cases", http.HandlerFunc(c.CaseListHandler)).Methods("GET")
	apiCreate.Handle("/cases/lookup", http.HandlerFunc(s.LookupHandler)).Methods("GET")
	apiCreate.Handle("/case/{case_id}", http.HandlerFunc(c.CaseByIDHandler)).Methods("GET")
	apiCreate.Handle("/documents/view", http.HandlerFunc(d.ViewDocumentHandler)).Methods("GET")

	// registry mutations require an admin session
	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/minutasi", api.Middleware(http.HandlerFunc(m.ArchiveCaseHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/minutasi", api.Middleware(http.HandlerFunc(m.ResetMinutasiHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/document", api.Middleware(http.HandlerFunc(d.UploadDocumentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/document/link", api.Middleware(http.HandlerFunc(d.CreateDocumentLinkHandler))).Methods("POST")
	apiCreate.Handle("/documents/signature", api.Middleware(http.HandlerFunc(d.GenerateSignature))).Methods("POST")

	// websocket feed lives outside the timeout-wrapped subrouter
	r.Handle("/api/v1/cases/live", http.HandlerFunc(live.FeedHandler)).Methods("GET")

	return r
}

func (a *App) middlewareDB() api.MiddlewareDB {
	if a.dbHelper == nil {
		return api.MiddlewareDB{}
	}
	return api.MiddlewareDB{DB: databases.NewAdminDatabase(a.dbHelper)}
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	var store archive.Store

	if a.Config.URL == "" {
		// single-desk deployment without a database: the registry lives in
		// the local JSON file and auth falls back to the bootstrap admin
		zap.S().Warnw("DB_URI not set, using local file store", "path", a.Config.SnapshotPath)
		store = archive.NewFileStore(a.Config.SnapshotPath)
	} else {
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			zap.S().With(err).Error("failed to create new client")
			return err
		}
		if err := client.Connect(); err != nil {
			zap.S().With(err).Error("failed to connect to database")
			return err
		}
		a.dbHelper = databases.NewDatabase(&a.Config, client)
		zap.S().Info("sicantik-api has connected to the database")

		if err := databases.EnsureBootstrapAdmin(a.dbHelper); err != nil {
			zap.S().With(err).Error("failed to ensure bootstrap admin")
			return err
		}
		store = databases.NewCaseStore(databases.NewCaseDatabase(a.dbHelper))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	registry, err := archive.NewRegistry(ctx, store)
	if err != nil {
		zap.S().With(err).Error("failed to load case registry")
		return err
	}
	a.Registry = registry

	m := a.middlewareDB()
	m.SetupGoGuardian()

	snap := scheduler.New(a.Registry, archive.NewFileStore(a.Config.SnapshotPath))
	snap.Start()

	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
