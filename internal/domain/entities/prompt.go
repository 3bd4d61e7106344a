package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is an operator-managed text template looked up by label.
// The scoring rubric is the prompt labelled "scorecard_rubric".
type Prompt struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Label     string    `json:"label" gorm:"type:varchar(255);not null;index"`
	Order     int       `json:"order" gorm:"column:order;default:0"`
	Template  string    `json:"template" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// IsEmpty reports whether the template has no usable text
func (p *Prompt) IsEmpty() bool {
	return p == nil || strings.TrimSpace(p.Template) == ""
}

// TableName specifies the table name for GORM
func (Prompt) TableName() string {
	return "prompts"
}
