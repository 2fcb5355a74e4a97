package controllers

import (
	"net/http"

	"github.com/mvidal/promptgallery-backend/api/responses"
	"github.com/mvidal/promptgallery-backend/pkg/db"
	pkgerrors "github.com/mvidal/promptgallery-backend/pkg/errors"
	"github.com/mvidal/promptgallery-backend/pkg/logger"
	"github.com/mvidal/promptgallery-backend/pkg/migrate"
)

// InitDatabase applies pending schema migrations. Repeated calls are no-ops
// because goose skips versions it has already recorded.
func InitDatabase(client *db.Client, dir string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database unavailable"))
			return
		}

		sqlDB, err := client.SQLDB()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open sql handle"))
			return
		}

		if dir == "" {
			dir = migrate.DefaultDir
		}
		if err := migrate.Up(r.Context(), sqlDB, dir); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply migrations"))
			return
		}

		responses.WriteMessage(w, "Database initialized")
	}
}
