package handlers

import (
	"net/http"

	"github.com/Lauda128109319/food-alert/internal/voice"
	"github.com/gin-gonic/gin"
)

type VoiceHandler struct{}

func NewVoiceHandler() *VoiceHandler {
	return &VoiceHandler{}
}

type VoiceParseRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// POST /api/voice/parse splits a speech transcript into name and quantity
// for prefilling the add form.
func (h *VoiceHandler) Parse(ctx *gin.Context) {
	var req VoiceParseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	parsed := voice.ParseTranscript(req.Transcript)

	if parsed.Name == "" {
		RespondBadRequest(ctx, "Could not extract a food name from the transcript", nil)
		return
	}

	ctx.JSON(http.StatusOK, parsed)
}
