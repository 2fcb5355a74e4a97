package mediagroups

import (
	"context"

	"gorm.io/gorm"

	"github.com/mvidal/promptgallery-backend/internal/repo"
	"github.com/mvidal/promptgallery-backend/pkg/db/models"
)

// Repository defines persistence operations for the media catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.MediaItem) error
	ListGroups(ctx context.Context) ([]models.MediaItem, error)
	ListItems(ctx context.Context, groupID string) ([]models.MediaItem, error)
	GroupExists(ctx context.Context, groupID string) (bool, error)
	BlobKeys(ctx context.Context, groupID string) ([]string, error)
	DeleteGroupRows(ctx context.Context, groupID string) (int64, error)
	UpdatePrompt(ctx context.Context, groupID, prompt string) (int64, error)
	GroupIDs(ctx context.Context) ([]string, error)
}

type repository struct {
	base repo.Base
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) CreateItem(ctx context.Context, item *models.MediaItem) error {
	return r.base.DB(ctx).Create(item).Error
}

func (r *repository) ListGroups(ctx context.Context) ([]models.MediaItem, error) {
	var rows []models.MediaItem
	err := r.base.DB(ctx).
		Where("is_group = ?", true).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListItems(ctx context.Context, groupID string) ([]models.MediaItem, error) {
	var rows []models.MediaItem
	err := r.base.DB(ctx).
		Where("group_id = ?", groupID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GroupExists reports whether any catalog row resolves the id, as a group row
// or as an item referencing it.
func (r *repository) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.MediaItem{}).
		Where("id = ? OR group_id = ?", groupID, groupID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BlobKeys collects the storage keys of the group row and every item row.
func (r *repository) BlobKeys(ctx context.Context, groupID string) ([]string, error) {
	var keys []string
	err := r.base.DB(ctx).
		Model(&models.MediaItem{}).
		Where("id = ? OR group_id = ?", groupID, groupID).
		Pluck("r2_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repository) DeleteGroupRows(ctx context.Context, groupID string) (int64, error) {
	result := r.base.DB(ctx).
		Where("id = ? OR group_id = ?", groupID, groupID).
		Delete(&models.MediaItem{})
	return result.RowsAffected, result.Error
}

func (r *repository) UpdatePrompt(ctx context.Context, groupID, prompt string) (int64, error) {
	result := r.base.DB(ctx).
		Model(&models.MediaItem{}).
		Where("id = ?", groupID).
		Update("prompt", prompt)
	return result.RowsAffected, result.Error
}

// GroupIDs lists the ids of every group row. Used by the orphan sweep to
// decide which blob prefixes are still referenced.
func (r *repository) GroupIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.base.DB(ctx).
		Model(&models.MediaItem{}).
		Where("is_group = ?", true).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
