package models

import (
	"time"
)

// Citation modelliert eine gerichtete Kante: Quelle zitiert Ziel (A cites B).
type Citation struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SourcePaperID uint      `json:"source_paper_id" gorm:"not null;index"`
	TargetPaperID uint      `json:"target_paper_id" gorm:"not null;index"`
	CitationDate  time.Time `json:"citation_date" gorm:"type:date;not null;index"`

	// Nur für die Fremdschlüssel; Papers mit Zitationen lassen sich nicht einzeln löschen.
	SourcePaper *Paper `json:"-" gorm:"foreignKey:SourcePaperID;constraint:OnDelete:RESTRICT"`
	TargetPaper *Paper `json:"-" gorm:"foreignKey:TargetPaperID;constraint:OnDelete:RESTRICT"`
}

// TableName gibt explizit den Tabellennamen an.
func (Citation) TableName() string {
	return "citations"
}

// CitationDay kürzt einen Zeitpunkt auf seinen Kalendertag in der Zeitzone von t und
// liefert diesen Tag als Mitternacht UTC. 2026-09-15 00:30 +02:00 bleibt der 15.09.
func CitationDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
