package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/watchdog/internal/api/handlers"
	"github.com/your-org/watchdog/internal/api/ws"
	"github.com/your-org/watchdog/internal/auth"
	"github.com/your-org/watchdog/internal/queue"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/internal/vision"
)

type RouterConfig struct {
	APIKey    string
	DB        *storage.PostgresStore
	MinIO     *storage.MinIOStore
	Producer  *queue.Producer
	Hub       *ws.Hub
	Notifier  handlers.Notifier
	Extractor vision.Extractor
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	captureH := handlers.NewCaptureHandler(cfg.DB, cfg.MinIO, cfg.Notifier)
	faceH := handlers.NewFaceHandler(cfg.DB, cfg.MinIO, cfg.Extractor)
	userH := handlers.NewUserHandler(cfg.DB)
	adminH := handlers.NewAdminHandler(cfg.DB)

	// Admin surface: static API key, provisioning only
	admin := r.Group("/v1/admin")
	admin.Use(auth.APIKeyMiddleware(cfg.APIKey))
	admin.POST("/cameras", adminH.CreateCamera)
	admin.GET("/cameras", adminH.ListCameras)
	admin.POST("/users", adminH.CreateUser)
	admin.POST("/groups", adminH.CreateGroup)
	admin.POST("/groups/:id/members", adminH.AddGroupMember)

	// Camera surface: device-token auth
	camera := r.Group("/v1/camera")
	camera.Use(auth.CameraMiddleware(cfg.DB))
	camera.POST("/captures", captureH.Upload)
	camera.POST("/recordings", captureH.RecordingStarted)

	// User surface: bearer-token auth
	v1 := r.Group("/v1")
	v1.Use(auth.UserMiddleware(cfg.DB))

	v1.GET("/ws", cfg.Hub.HandleWS)

	v1.GET("/captures", captureH.List)
	v1.GET("/captures/:id/snapshot", captureH.Snapshot)

	v1.POST("/faces", faceH.Register)
	v1.GET("/faces", faceH.List)
	v1.DELETE("/faces/:id", faceH.Delete)

	v1.GET("/me/notifications", userH.GetPrefs)
	v1.PUT("/me/notifications", userH.UpdatePrefs)
	v1.PUT("/me/notification-token", userH.SetNotificationToken)

	return r
}
