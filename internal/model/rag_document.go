package model

import "time"

// RAGDocument is the registry entry for one ingested PDF. Chunks and vectors live in
// the vector store under the same DocID.
type RAGDocument struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	DocID      string    `gorm:"size:32;not null;uniqueIndex" json:"doc_id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	PageCount  int       `gorm:"not null" json:"page_count"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
