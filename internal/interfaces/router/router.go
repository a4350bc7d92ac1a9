package router

import (
	"net/http"

	agentsvc "propview-backend/internal/application/agents"
	emailsvc "propview-backend/internal/application/emails"
	filesvc "propview-backend/internal/application/files"
	listsvc "propview-backend/internal/application/listings"
	previewsvc "propview-backend/internal/application/preview"
	"propview-backend/internal/config"
	"propview-backend/internal/infrastructure/database"
	agenthandler "propview-backend/internal/interfaces/handlers/agents"
	authhandler "propview-backend/internal/interfaces/handlers/auth"
	filehandler "propview-backend/internal/interfaces/handlers/files"
	healthhandler "propview-backend/internal/interfaces/handlers/health"
	listhandler "propview-backend/internal/interfaces/handlers/listings"
	previewhandler "propview-backend/internal/interfaces/handlers/preview"
	"propview-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               64 * 1024 * 1024, // multipart upload batches
	})

	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigin: cfg.AllowedOrigin}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	app.Static("/uploads", cfg.UploadsDir)

	isProduction := cfg.Env == "production"
	ah := &authhandler.Handlers{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		Secret:            cfg.SessionSecret,
		IsProduction:      isProduction,
	}
	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Post("/logout", ah.Logout)

	if db != nil {
		requireAdmin := middleware.RequireAdmin(cfg.SessionSecret)

		assets := &filesvc.AssetStore{Root: cfg.UploadsDir}
		records := &filesvc.RecordStore{DB: db}
		fs := &filesvc.Service{Records: records, Assets: assets}

		// Listings
		ls := &listsvc.Service{DB: db, Files: fs}
		lh := &listhandler.Handlers{Service: ls}
		lg := app.Group("/api/listings", requireAdmin)
		lg.Post("/", lh.Create)
		lg.Get("/", lh.GetAll)
		lg.Get("/by-slug/:slug", lh.GetBySlug)
		lg.Get("/:id", lh.GetByID)
		lg.Put("/:id", lh.Update)
		lg.Delete("/:id", lh.Delete)

		// Agents
		as := &agentsvc.Service{DB: db, Files: fs}
		agh := &agenthandler.Handlers{Service: as}
		ag := app.Group("/api/agents", requireAdmin)
		ag.Post("/", agh.Create)
		ag.Get("/", agh.GetAll)
		ag.Get("/:id", agh.GetByID)
		ag.Put("/:id", agh.Update)
		ag.Delete("/:id", agh.Delete)

		// Files
		fh := &filehandler.Handlers{Service: fs, Assets: assets}
		fg := app.Group("/api/files", requireAdmin)
		fg.Post("/listing/:id/multi", fh.UploadListingMulti)
		fg.Post("/agent/:id/multi", fh.UploadAgentMulti)
		fg.Post("/agent/:id/replace", fh.ReplaceAgentSlot)
		fg.Delete("/agent/:id/by-alt/:altText", fh.RemoveAgentSlot)
		fg.Post("/from-url", fh.AttachFromURL)
		fg.Get("/", fh.List)
		fg.Put("/:listingId/selected", fh.UpdateSelected)
		fg.Put("/:listingId", fh.SaveFinalState)
		fg.Delete("/:listingId", fh.ClearListing)

		// Preview / publish
		var mailer emailsvc.Sender = &emailsvc.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
		ps := &previewsvc.Service{
			DB:         db,
			Mailer:     mailer,
			Secret:     cfg.SessionSecret,
			ClientBase: cfg.ClientBase,
		}
		ph := &previewhandler.Handlers{Service: ps, Listings: ls}
		app.Post("/api/preview/send", requireAdmin, ph.Send)
		app.Get("/api/preview/slug/:slug", ph.BySlug)
		app.Get("/api/public/slug/:slug", ph.PublicBySlug)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
