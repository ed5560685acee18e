package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/logger"
	"github.com/spacehub/backend/pkg/utils"
)

// NotesHandler owns the note aggregate: the note row, its ordered blocks,
// and every mutation on them. All operations pass the membership guard of
// the note's owning group before touching state.
type NotesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
	Hub    *realtime.Hub
}

func NewNotesHandler(db *gorm.DB, access *services.AccessService, hub *realtime.Hub) *NotesHandler {
	return &NotesHandler{DB: db, Access: access, Hub: hub}
}

type createNoteRequest struct {
	Title string `json:"title"`
}

func (h *NotesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.RequireMember(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	var req createNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "note title is required")
	}

	note := models.Note{
		GroupID:     groupID,
		Title:       req.Title,
		CreatedByID: currentUser.ID,
	}

	// The seed paragraph block is part of note creation, not a follow-up
	// write: a note must never exist without its position-0 block.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note).Error; err != nil {
			return err
		}
		seed := models.NoteBlock{
			NoteID:    note.ID,
			BlockType: models.BlockTypeParagraph,
			Content:   services.DefaultBlockContent(models.BlockTypeParagraph),
			Position:  0,
		}
		return tx.Create(&seed).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating note")
	}

	if err := h.DB.Preload("Creator").Preload("Blocks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&note, "id = ?", note.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading created note")
	}

	h.Hub.Publish(realtime.GroupChannel(groupID), "note.created", note)

	logger.InfoWithUser(currentUser.ID.String(), "note_created", map[string]interface{}{
		"note_id":  note.ID.String(),
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, note)
}

func (h *NotesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.RequireMember(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	var notes []models.Note
	if err := h.DB.Preload("Creator").
		Where("group_id = ?", groupID).
		Order("updated_at DESC").
		Find(&notes).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing notes")
	}

	return utils.Success(c, fiber.StatusOK, notes)
}

func (h *NotesHandler) Get(c *fiber.Ctx) error {
	note, errResp := h.guardedNote(c)
	if note == nil {
		return errResp
	}

	if err := h.DB.Preload("Creator").Preload("Blocks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(note, "id = ?", note.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading note")
	}

	return utils.Success(c, fiber.StatusOK, note)
}

type addBlockRequest struct {
	BlockType models.BlockType `json:"blockType"`
	Content   json.RawMessage  `json:"content"`
	Position  *int             `json:"position"`
}

func (h *NotesHandler) AddBlock(c *fiber.Ctx) error {
	note, errResp := h.guardedNote(c)
	if note == nil {
		return errResp
	}

	var req addBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.BlockType == "" {
		return utils.Error(c, fiber.StatusBadRequest, "block type is required")
	}
	if !req.BlockType.Valid() {
		return utils.Error(c, fiber.StatusBadRequest, "unknown block type")
	}

	content, err := services.ValidateBlockContent(req.BlockType, req.Content)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	// Omitted position appends after the current maximum; existing blocks
	// are never shifted.
	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var last models.NoteBlock
		err := h.DB.Where("note_id = ?", note.ID).Order("position DESC").First(&last).Error
		switch err {
		case nil:
			position = last.Position + 1
		case gorm.ErrRecordNotFound:
			position = 0
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "failed resolving block position")
		}
	}

	block := models.NoteBlock{
		NoteID:    note.ID,
		BlockType: req.BlockType,
		Content:   content,
		Position:  position,
	}
	if err := h.DB.Create(&block).Error; err != nil {
		return utils.Error(c, fiber.StatusConflict, "position already occupied")
	}

	h.Hub.Publish(realtime.NoteChannel(note.ID), "block.created", block)

	return utils.Success(c, fiber.StatusCreated, block)
}

type updateBlockRequest struct {
	Content json.RawMessage `json:"content"`
}

func (h *NotesHandler) UpdateBlock(c *fiber.Ctx) error {
	note, errResp := h.guardedNote(c)
	if note == nil {
		return errResp
	}

	blockID, err := parseUUID(c.Params("blockId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid block id")
	}

	var block models.NoteBlock
	if err := h.DB.First(&block, "id = ? AND note_id = ?", blockID, note.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "block not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading block")
	}

	var req updateBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Content) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "content is required")
	}

	content, err := services.ValidateBlockContent(block.BlockType, req.Content)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	// Wholesale replacement. Fields absent from the payload are gone, not
	// merged; concurrent updates are last-write-wins.
	if err := h.DB.Model(&block).Update("content", content).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating block")
	}

	block.Content = content
	h.Hub.Publish(realtime.NoteChannel(note.ID), "block.updated", block)

	return utils.Success(c, fiber.StatusOK, block)
}

func (h *NotesHandler) DeleteBlock(c *fiber.Ctx) error {
	note, errResp := h.guardedNote(c)
	if note == nil {
		return errResp
	}

	blockID, err := parseUUID(c.Params("blockId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid block id")
	}

	var block models.NoteBlock
	if err := h.DB.First(&block, "id = ? AND note_id = ?", blockID, note.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "block not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading block")
	}

	// Sibling positions keep their values; the gap stays.
	if err := h.DB.Delete(&models.NoteBlock{}, "id = ?", block.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting block")
	}

	h.Hub.Publish(realtime.NoteChannel(note.ID), "block.deleted", fiber.Map{
		"noteId":  note.ID.String(),
		"blockId": block.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "block deleted"})
}

// guardedNote resolves the note from the :id param and runs the membership
// guard against its owning group. A missing note is NotFound; a valid note
// in a foreign group is Forbidden.
func (h *NotesHandler) guardedNote(c *fiber.Ctx) (*models.Note, error) {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return nil, utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	noteID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid note id")
	}

	note, err := h.Access.NoteGroup(noteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.Error(c, fiber.StatusNotFound, "note not found")
		}
		return nil, utils.Error(c, fiber.StatusInternalServerError, "failed loading note")
	}

	if _, err := h.Access.RequireMember(note.GroupID, currentUser.ID); err != nil {
		return nil, membershipError(c, err)
	}

	return note, nil
}
