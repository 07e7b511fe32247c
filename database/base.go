package database

import (
	"time"
)

// BaseModel is embedded by every entity. Rows are hard deleted: the
// student_projects foreign keys rely on real DELETEs to cascade or to
// reject, which a soft delete column would bypass.
type BaseModel struct {
	Id        int64     `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"<-:create"`
	UpdatedAt time.Time
}
