package models

// MediaItem is one row of the polymorphic media_items catalog. A row is either
// a group (IsGroup true, Name/Type hold the "group" sentinel) or an item
// belonging to a group through GroupID.
type MediaItem struct {
	ID        string  `gorm:"column:id;primaryKey" json:"id"`
	Name      string  `gorm:"column:name;not null" json:"name"`
	Type      string  `gorm:"column:type;not null" json:"type"`
	Prompt    string  `gorm:"column:prompt" json:"prompt"`
	AIModel   *string `gorm:"column:ai_model" json:"ai_model"`
	Timestamp int64   `gorm:"column:timestamp;not null" json:"timestamp"`
	IsGroup   bool    `gorm:"column:is_group;not null;default:false" json:"is_group"`
	GroupID   *string `gorm:"column:group_id" json:"group_id"`
	R2Key     string  `gorm:"column:r2_key;not null" json:"-"`
}

// TableName pins the catalog table name.
func (MediaItem) TableName() string {
	return "media_items"
}

// GroupSentinel fills the name/type columns of group rows.
const GroupSentinel = "group"
