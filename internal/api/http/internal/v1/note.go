package v1

import (
	"encoding/json"
	"net/http"

	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initNotesRoutes(api *gin.RouterGroup) {
	notes := api.Group("/notes", h.userIdentityMiddleware)

	notes.POST("", h.createNote)
	notes.GET("", h.getAllNotes)
	notes.GET("/:id", h.getNote)
	notes.DELETE("/:id", h.deleteNote)
}

type createNoteInput struct {
	Title   string `json:"title" binding:"required,min=1,max=100"`
	Content string `json:"content" binding:"required,max=10000"`
}

// UnmarshalJSON trims the title; content is stored as sent.
func (i *createNoteInput) UnmarshalJSON(data []byte) error {
	type plain createNoteInput
	if err := json.Unmarshal(data, (*plain)(i)); err != nil {
		return err
	}

	trimSpaces(&i.Title)
	return nil
}

type noteResponse struct {
	Message string       `json:"message"`
	Note    *domain.Note `json:"note"`
}

type notesResponse struct {
	Message string        `json:"message"`
	Notes   []domain.Note `json:"notes"`
}

// @Summary Create note
// @Tags Notes
// @Description Creates a note; titles are unique per user
// @ModuleID createNote
// @Accept  json
// @Produce  json
// @Param input body createNoteInput true "Note"
// @Success 201 {object} noteResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401 {object} ErrorStruct
// @Security CookieAuth
// @Router /notes [post]
func (h *Handler) createNote(c *gin.Context) {
	var inp createNoteInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	userID, err := getUserUUID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	note, err := h.services.Notes.Create(c.Request.Context(), userID, service.NoteInput{
		Title:   inp.Title,
		Content: inp.Content,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, noteResponse{"Note added successfully", note})
}

// @Summary List notes
// @Tags Notes
// @Description Returns every note of the signed-in user, newest first
// @ModuleID getAllNotes
// @Produce  json
// @Success 200 {object} notesResponse
// @Failure 401 {object} ErrorStruct
// @Security CookieAuth
// @Router /notes [get]
func (h *Handler) getAllNotes(c *gin.Context) {
	userID, err := getUserUUID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	notes, err := h.services.Notes.GetAll(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, notesResponse{"All notes fetched successfully", notes})
}

// @Summary Get note
// @Tags Notes
// @ModuleID getNote
// @Produce  json
// @Param id path string true "Note ID"
// @Success 200 {object} noteResponse
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security CookieAuth
// @Router /notes/{id} [get]
func (h *Handler) getNote(c *gin.Context) {
	userID, noteID, err := noteParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	note, err := h.services.Notes.GetByID(c.Request.Context(), userID, noteID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, noteResponse{"Note fetched successfully", note})
}

// @Summary Delete note
// @Tags Notes
// @ModuleID deleteNote
// @Produce  json
// @Param id path string true "Note ID"
// @Success 200 {object} messageResponse
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security CookieAuth
// @Router /notes/{id} [delete]
func (h *Handler) deleteNote(c *gin.Context) {
	userID, noteID, err := noteParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.services.Notes.Delete(c.Request.Context(), userID, noteID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{"Note deleted successfully"})
}

// noteParams reports a malformed note id as a missing note.
func noteParams(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserUUID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, service.ErrNoteNotFound
	}

	return userID, noteID, nil
}
