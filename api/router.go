// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"smritikosha/memory-api/ai"
	"smritikosha/memory-api/db"
	"smritikosha/memory-api/middleware"
	"smritikosha/memory-api/security"
	"smritikosha/memory-api/service"
	"smritikosha/memory-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Store    storage.ObjectStore
	Buckets  storage.Buckets
	AI       ai.Client
	Renderer service.Renderer
	Flow     *service.FlowBuilder
}

func NewRouter() (*API, error) {
	a := &API{}

	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = d

	makeLogger()

	a.Buckets = storage.BucketsFromConfig()

	s3, err := storage.NewS3(a.Buckets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.Store = s3

	a.AI = ai.NewOpenAI()
	a.Argon = security.New()

	q := service.NewRenderQueue()
	q.StartWorkerPool()
	a.Renderer = q

	a.Flow = &service.FlowBuilder{
		DB:            a.DB,
		Store:         a.Store,
		Buckets:       a.Buckets,
		AI:            a.AI,
		StylizeBudget: viper.GetInt("reel.stylize_budget"),
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: 10,
			Burst:             30,
		}),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	a.mountRoutes()

	return a, nil
}

// mountRoutes attaches the request ID middleware and every endpoint.
// Kept separate from NewRouter so tests can mount the same routes on a
// bare engine with fake collaborators
func (a *API) mountRoutes() {
	router := a.Router

	router.Use(middleware.NewRequestIDMiddleware())

	jwt := middleware.NewJWTMiddleware(a.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")
	jsonLimit := middleware.BodySizeLimiter(1 << 20)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)
	}

	users := main.Group("/users", jsonLimit)
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		users.POST("/login", a.UserLogin)
	}

	memories := main.Group("/memories")
	{
		// POST /api/memories		-> Creates a new memory
		memories.POST("", jwt, jsonLimit, a.MemoryCreate)

		// GET /api/memories		-> Returns a user's memories with signed image URLs
		memories.GET("", jwt, a.MemoryFetchBulk)

		// PUT /api/memories/:id	-> Edits a memory's title and metadata
		memories.PUT("/:id", jwt, jsonLimit, a.MemoryUpdate)

		// DELETE /api/memories/:id	-> Deletes a memory, its images and their storage objects
		memories.DELETE("/:id", jwt, a.MemoryDelete)

		// POST /api/memories/:id/images -> Uploads a photo into a memory
		memories.POST("/:id/images", jwt, middleware.BodySizeLimiter(maxUploadSize), a.ImageUpload)

		// POST /api/memories/:id/reel	-> Builds a reel preview (visual flow)
		memories.POST("/:id/reel", jwt, a.ReelPreview)

		// POST /api/memories/:id/summarize -> Generates an AI summary of the memory
		memories.POST("/:id/summarize", jwt, a.Summarize)

		// POST /api/memories/:id/summary -> Persists a summary
		memories.POST("/:id/summary", jwt, jsonLimit, a.SummarySave)
	}

	// DELETE /api/images/:id		-> Deletes a single photo
	main.DELETE("/images/:id", jwt, a.ImageDelete)

	reels := main.Group("/reels")
	{
		// POST /api/reels		-> Saves a reel as a draft
		reels.POST("", jwt, jsonLimit, a.ReelSave)

		// POST /api/reels/:id/publish	-> Renders (if needed) and publishes a reel
		reels.POST("/:id/publish", jwt, a.ReelPublish)

		// POST /api/reels/download	-> Saved (signed URL) or ephemeral (byte stream) download
		reels.POST("/download", jwt, jsonLimit, a.ReelDownload)

		// GET /api/reels/:id/timeline	-> Playback schedule for the client player
		reels.GET("/:id/timeline", jwt, a.ReelTimeline)

		// GET /api/reels/view/:slug	-> Public published reel lookup, no auth
		reels.GET("/view/:slug", cacheFor(60), a.ReelView)
	}

	// POST /api/stylize			-> Generates a stylized version of an image
	main.POST("/stylize", jwt, jsonLimit, a.Stylize)
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
