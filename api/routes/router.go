package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvidal/promptgallery-backend/api/controllers"
	"github.com/mvidal/promptgallery-backend/api/middleware"
	"github.com/mvidal/promptgallery-backend/internal/mediagroups"
	"github.com/mvidal/promptgallery-backend/pkg/config"
	"github.com/mvidal/promptgallery-backend/pkg/db"
	"github.com/mvidal/promptgallery-backend/pkg/logger"
	pkgredis "github.com/mvidal/promptgallery-backend/pkg/redis"
	"github.com/mvidal/promptgallery-backend/pkg/storage/s3"
)

// RouterParams carry everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DBClient     *db.Client
	RedisClient  *pkgredis.Client
	BlobClient   *s3.Client
	MediaService mediagroups.Service
	// MigrationsDir overrides the goose directory used by /init.
	MigrationsDir string
}

// NewRouter assembles the middleware chain and endpoint tree.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var idempotencyStore pkgredis.IdempotencyStore
	if params.RedisClient != nil {
		idempotencyStore = params.RedisClient
	}
	r.Use(middleware.Idempotency(idempotencyStore, logg))

	var dbPinger db.Pinger
	if params.DBClient != nil {
		dbPinger = params.DBClient
	}
	var redisPinger pkgredis.Pinger
	if params.RedisClient != nil {
		redisPinger = params.RedisClient
	}
	var blobPinger s3.Pinger
	if params.BlobClient != nil {
		blobPinger = params.BlobClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger, blobPinger))
	})

	r.Get("/init", controllers.InitDatabase(params.DBClient, params.MigrationsDir, logg))

	r.Route("/api/media-groups", func(r chi.Router) {
		r.Get("/", controllers.ListMediaGroups(params.MediaService, logg))
		r.Post("/", controllers.CreateMediaGroup(params.MediaService, logg))
		r.Route("/{groupId}", func(r chi.Router) {
			r.Get("/", controllers.GetMediaGroupItems(params.MediaService, logg))
			r.Get("/items", controllers.GetMediaGroupItems(params.MediaService, logg))
			r.Patch("/", controllers.UpdateMediaGroupPrompt(params.MediaService, logg))
			r.Delete("/", controllers.DeleteMediaGroup(params.MediaService, logg))
		})
	})

	return r
}
