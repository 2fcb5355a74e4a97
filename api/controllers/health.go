package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mvidal/promptgallery-backend/api/responses"
	"github.com/mvidal/promptgallery-backend/pkg/config"
	"github.com/mvidal/promptgallery-backend/pkg/db"
	pkgerrors "github.com/mvidal/promptgallery-backend/pkg/errors"
	"github.com/mvidal/promptgallery-backend/pkg/logger"
	"github.com/mvidal/promptgallery-backend/pkg/redis"
	"github.com/mvidal/promptgallery-backend/pkg/storage/s3"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gallery-Env", cfg.App.Env)
		responses.WriteJSON(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the catalog, Redis, and the blob store.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, blobP s3.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gallery-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]func(context.Context) error{}
		if dbP != nil {
			checks["catalog"] = dbP.Ping
		}
		if redisP != nil {
			checks["redis"] = redisP.Ping
		}
		if blobP != nil {
			checks["blob"] = blobP.Ping
		}

		status := make(map[string]string, len(checks)+1)
		ready := true
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				status[name] = "down"
				ready = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			status[name] = "ok"
		}

		if !ready {
			status["status"] = "not ready"
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(status))
			return
		}

		status["status"] = "ready"
		responses.WriteJSON(w, status)
	}
}
