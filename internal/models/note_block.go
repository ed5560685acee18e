package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BlockType string

const (
	BlockTypeParagraph BlockType = "PARAGRAPH"
	BlockTypeHeading   BlockType = "HEADING"
	BlockTypeList      BlockType = "LIST"
	BlockTypeCode      BlockType = "CODE"
	BlockTypeQuote     BlockType = "QUOTE"
	BlockTypeDivider   BlockType = "DIVIDER"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeParagraph, BlockTypeHeading, BlockTypeList,
		BlockTypeCode, BlockTypeQuote, BlockTypeDivider:
		return true
	default:
		return false
	}
}

// NoteBlock positions form a sparse ascending sequence within a note: gaps
// left by deletions are never compacted, and the unique index rejects
// duplicates instead of tolerating unspecified sort ties.
type NoteBlock struct {
	BaseModel
	NoteID    uuid.UUID      `json:"noteId" gorm:"type:uuid;not null;index;uniqueIndex:idx_note_position"`
	BlockType BlockType      `json:"blockType" gorm:"type:varchar(20);not null"`
	Content   datatypes.JSON `json:"content" gorm:"type:json;not null"`
	Position  int            `json:"position" gorm:"not null;uniqueIndex:idx_note_position"`
}
