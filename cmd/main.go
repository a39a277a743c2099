package main

import (
	"context"
	"net/http"
	"time"

	_ "time/tzdata" // Load timezone data

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/application-service/internal/app"
	"github.com/poofware/application-service/internal/config"
	"github.com/poofware/application-service/internal/controllers"
	"github.com/poofware/application-service/internal/middleware"
	"github.com/poofware/application-service/internal/routes"
	"github.com/poofware/application-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (store, services, metrics)
	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize the application:", err)
	}
	defer application.Close()

	// Conditionally seed a demo application if the feature flag is enabled.
	if cfg.LDFlag_SeedDbWithTestData {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := app.SeedDemoApplication(ctx, application.Store, cfg.ResumeBaseURL())
		cancel()
		if err != nil {
			utils.Logger.Fatal("Failed to seed demo application:", err)
		}
	}

	// 3) Controllers
	healthCtrl := controllers.NewHealthController(application.ApplicationService)
	applicationCtrl := controllers.NewApplicationController(application.ApplicationService)

	// 4) Router
	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware(application.Metrics))

	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, application.Metrics.Handler()).Methods(http.MethodGet)

	router.HandleFunc(routes.Applications, applicationCtrl.CreateApplicationHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Applications, applicationCtrl.GetApplicationHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Applications, applicationCtrl.UpdateApplicationHandler).Methods(http.MethodPut)
	router.HandleFunc(routes.ApplicationsValidate, applicationCtrl.ValidateApplicationHandler).Methods(http.MethodPost)

	// 5) CORS
	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
