package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvidal/promptgallery-backend/api/responses"
	"github.com/mvidal/promptgallery-backend/api/validators"
	"github.com/mvidal/promptgallery-backend/internal/mediagroups"
	pkgerrors "github.com/mvidal/promptgallery-backend/pkg/errors"
	"github.com/mvidal/promptgallery-backend/pkg/logger"
)

const maxPromptLength = 10000

type mediaFileRequest struct {
	Name string `json:"name"`
	Type string `json:"type" validate:"required"`
	Data string `json:"data" validate:"required"`
}

type createMediaGroupRequest struct {
	Files   []mediaFileRequest `json:"files" validate:"required,min=1,dive"`
	Prompt  string             `json:"prompt"`
	AIModel *string            `json:"aiModel"`
}

type updatePromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// CreateMediaGroup handles a group upload and responds with the new group id.
func CreateMediaGroup(svc mediagroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var payload createMediaGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := mediagroups.CreateGroupInput{
			Files:   make([]mediagroups.FileInput, len(payload.Files)),
			Prompt:  validators.SanitizeString(payload.Prompt, maxPromptLength),
			AIModel: payload.AIModel,
		}
		for i, file := range payload.Files {
			input.Files[i] = mediagroups.FileInput{
				Name: file.Name,
				Type: file.Type,
				Data: file.Data,
			}
		}

		id, err := svc.CreateGroup(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, id)
	}
}

// ListMediaGroups returns every group row, newest first, as a bare array.
func ListMediaGroups(svc mediagroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		groups, err := svc.ListGroups(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, groups)
	}
}

// GetMediaGroupItems returns the item rows of one group as a bare array.
func GetMediaGroupItems(svc mediagroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		groupID := chi.URLParam(r, "groupId")
		ctx := logg.WithGroupID(r.Context(), groupID)
		items, err := svc.GroupItems(ctx, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, items)
	}
}

// UpdateMediaGroupPrompt rewrites a group's prompt.
func UpdateMediaGroupPrompt(svc mediagroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		groupID := chi.URLParam(r, "groupId")
		ctx := logg.WithGroupID(r.Context(), groupID)

		var payload updatePromptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		prompt := validators.SanitizeString(payload.Prompt, maxPromptLength)
		if err := svc.UpdatePrompt(ctx, groupID, prompt); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteMessage(w, "Prompt updated")
	}
}

// DeleteMediaGroup removes a group, its items, and their blobs.
func DeleteMediaGroup(svc mediagroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		groupID := chi.URLParam(r, "groupId")
		ctx := logg.WithGroupID(r.Context(), groupID)
		if err := svc.DeleteGroup(ctx, groupID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteMessage(w, "Media group deleted")
	}
}
