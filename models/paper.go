package models

import (
	"time"
)

// Paper repräsentiert eine wissenschaftliche Publikation im Zitationsgraphen.
// Einmal angelegt wird ein Paper nicht mehr verändert.
type Paper struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`

	Title         string `json:"title" gorm:"not null;index"`
	Topic         string `json:"topic" gorm:"not null;index"`
	PublishedYear int    `json:"published_year" gorm:"not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Paper) TableName() string {
	return "papers"
}
