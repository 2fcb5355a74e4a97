package mediagroups

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvidal/promptgallery-backend/pkg/db"
	"github.com/mvidal/promptgallery-backend/pkg/db/models"
	pkgerrors "github.com/mvidal/promptgallery-backend/pkg/errors"
)

const maxFilesPerGroup = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type blobStore interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Service exposes media-group catalog and blob orchestration.
type Service interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (string, error)
	ListGroups(ctx context.Context) ([]models.MediaItem, error)
	GroupItems(ctx context.Context, groupID string) ([]models.MediaItem, error)
	UpdatePrompt(ctx context.Context, groupID, prompt string) error
	DeleteGroup(ctx context.Context, groupID string) error
}

type service struct {
	tx   txRunner
	repo Repository
	blob blobStore
}

// NewService constructs a media-group service over the catalog and blob store.
func NewService(tx txRunner, repo Repository, blob blobStore) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if blob == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{tx: tx, repo: repo, blob: blob}, nil
}

// FileInput is one uploaded file: declared name/type plus a base64 data URL.
type FileInput struct {
	Name string
	Type string
	Data string
}

// CreateGroupInput models an upload of one group of files.
type CreateGroupInput struct {
	Files   []FileInput
	Prompt  string
	AIModel *string
}

// CreateGroup persists a group row plus one item row and one blob per file.
// Catalog writes are transactional; blob writes are not, so a failure after a
// successful Put leaves that blob orphaned until the sweep reclaims it.
func (s *service) CreateGroup(ctx context.Context, input CreateGroupInput) (string, error) {
	if len(input.Files) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "files are required")
	}
	if len(input.Files) > maxFilesPerGroup {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d files per group", maxFilesPerGroup))
	}
	for i, file := range input.Files {
		if strings.TrimSpace(file.Type) == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file %d is missing a mime type", i))
		}
		if strings.TrimSpace(file.Data) == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file %d is missing payload data", i))
		}
	}

	groupID := uuid.NewString()
	timestamp := time.Now().UnixMilli()

	groupRow := &models.MediaItem{
		ID:        groupID,
		Name:      models.GroupSentinel,
		Type:      models.GroupSentinel,
		Prompt:    input.Prompt,
		AIModel:   input.AIModel,
		Timestamp: timestamp,
		IsGroup:   true,
		R2Key:     groupBlobKey(groupID),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.CreateItem(ctx, groupRow); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "group id already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist group row")
		}

		for i, file := range input.Files {
			// The sniffed type is only a decode sanity check; the declared
			// type travels with the blob and the catalog row.
			payload, _, err := decodePayload(file.Data)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("file %d payload invalid", i))
			}

			itemID := uuid.NewString()
			blobKey := itemBlobKey(groupID, itemID)

			if err := s.blob.Put(ctx, blobKey, payload, file.Type); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write blob")
			}

			itemRow := &models.MediaItem{
				ID:        itemID,
				Name:      file.Name,
				Type:      file.Type,
				Timestamp: timestamp,
				GroupID:   &groupID,
				R2Key:     blobKey,
			}
			if err := repo.CreateItem(ctx, itemRow); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item id already exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist item row")
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// ListGroups returns every group row, newest first.
func (s *service) ListGroups(ctx context.Context) ([]models.MediaItem, error) {
	rows, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list groups")
	}
	return rows, nil
}

// GroupItems returns the item rows belonging to a group. An empty result is
// only an error when the id resolves to nothing at all.
func (s *service) GroupItems(ctx context.Context, groupID string) ([]models.MediaItem, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}

	rows, err := s.repo.ListItems(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group items")
	}
	if len(rows) == 0 {
		exists, err := s.repo.GroupExists(ctx, groupID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check group existence")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media group not found")
		}
	}
	return rows, nil
}

// UpdatePrompt rewrites the prompt on a group row. Empty prompts are rejected
// rather than treated as a clear.
func (s *service) UpdatePrompt(ctx context.Context, groupID, prompt string) error {
	if strings.TrimSpace(groupID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}

	affected, err := s.repo.UpdatePrompt(ctx, groupID, prompt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update prompt")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media group not found")
	}
	return nil
}

// DeleteGroup removes the group's blobs and then its catalog rows. A blob
// delete failure aborts the whole operation so the catalog never references
// blobs that may be half-gone. Deleting an unknown id succeeds as a no-op.
func (s *service) DeleteGroup(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		keys, err := repo.BlobKeys(ctx, groupID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "collect blob keys")
		}

		for _, key := range keys {
			if key == "" {
				continue
			}
			if err := s.blob.Delete(ctx, key); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete blob")
			}
		}

		if _, err := repo.DeleteGroupRows(ctx, groupID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog rows")
		}
		return nil
	})
}

func groupBlobKey(groupID string) string {
	return fmt.Sprintf("groups/%s", groupID)
}

func itemBlobKey(groupID, itemID string) string {
	return fmt.Sprintf("media/%s/%s", groupID, itemID)
}

// ItemBlobPrefix is the key prefix holding all item blobs of a group.
func ItemBlobPrefix(groupID string) string {
	return fmt.Sprintf("media/%s/", groupID)
}
