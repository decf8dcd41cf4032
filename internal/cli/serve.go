package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	api "github.com/meduaid/qb-portal/internal/api/http"
	"github.com/meduaid/qb-portal/internal/audit"
	auth "github.com/meduaid/qb-portal/internal/auth/middleware"
	"github.com/meduaid/qb-portal/internal/config"
	"github.com/meduaid/qb-portal/internal/db"
	"github.com/meduaid/qb-portal/internal/osce"
	"github.com/meduaid/qb-portal/internal/rbac"
	"github.com/meduaid/qb-portal/internal/sba"
	"github.com/meduaid/qb-portal/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), config.FromEnv())
		},
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	lg := logrus.StandardLogger()

	var dbh *sql.DB
	var stationStore osce.Store = osce.NewInMemoryStore()
	var submissionStore sba.Store = sba.NewInMemoryStore()
	var rec audit.Recorder = audit.Discard

	if cfg.DBDriver != "" && cfg.DBDriver != "memory" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var err error
		dbh, err = db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return err
		}
		stationStore = osce.NewSQLStore(dbh)
		submissionStore = sba.NewSQLStore(dbh)
		rec = audit.NewSQLRecorder(dbh)
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	stationSvc := osce.NewService(stationStore, rec, lg)
	submissionSvc := sba.NewService(submissionStore, rec, lg)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.DBCredentials{
		DB:            dbh,
		BootstrapUser: cfg.AdminUser,
		BootstrapHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT -> caller in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/stations", func(sr chi.Router) {
			sr.With(rbac.Require("station:create")).Post("/", api.CreateStationHandler(stationSvc))
			sr.With(rbac.Require("station:view")).Get("/", api.ListStationsHandler(stationSvc))
			sr.With(rbac.Require("station:view")).Get("/{stationID}", api.GetStationHandler(stationSvc))
			sr.With(rbac.Require("station:update")).Patch("/{stationID}", api.UpdateStationHandler(stationSvc))
			sr.With(rbac.Require("station:delete")).Delete("/{stationID}", api.DeleteStationHandler(stationSvc))
		})

		pr.Route("/submissions", func(sr chi.Router) {
			sr.With(rbac.Require("submission:create")).Post("/", api.CreateSubmissionHandler(submissionSvc))
			sr.With(rbac.Require("submission:view")).Get("/", api.ListSubmissionsHandler(submissionSvc))
			sr.With(rbac.Require("submission:view")).Get("/{submissionID}", api.GetSubmissionHandler(submissionSvc))
			sr.With(rbac.Require("submission:update")).Patch("/{submissionID}", api.UpdateSubmissionHandler(submissionSvc))
			sr.With(rbac.Require("submission:delete")).Delete("/{submissionID}", api.DeleteSubmissionHandler(submissionSvc))
		})

		pr.Route("/assets", func(ar chi.Router) {
			ar.Use(rbac.RequireAny("asset:upload", "asset:view"))
			api.MountAssets(ar, bs)
		})

		if dbh != nil {
			pr.With(rbac.Require("users:create")).Post("/users", api.CreateUserHandler(dbh))
			pr.With(rbac.Require("users:list")).Get("/users", api.ListUsersHandler(dbh))
			pr.With(rbac.Require("user:change_password")).Post("/users/change-password", api.ChangePasswordHandler(dbh))

			pr.With(rbac.Require("penalty:create")).Post("/penalties", api.CreatePenaltyHandler(dbh))
			pr.With(rbac.Require("penalty:list")).Get("/penalties", api.ListPenaltiesHandler(dbh))
			pr.With(rbac.Require("penalty:delete")).Delete("/penalties/{penaltyID}", api.DeletePenaltyHandler(dbh))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		lg.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "db": cfg.DBDriver}).Info("portal listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		lg.Info("shutting down")
	case <-ctx.Done():
		lg.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
