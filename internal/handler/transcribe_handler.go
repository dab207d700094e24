package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// allowedAudioTypes lists the mime types the speech service accepts.
var allowedAudioTypes = map[string]bool{
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/aiff":  true,
	"audio/aac":   true,
	"audio/ogg":   true,
	"audio/flac":  true,
}

type TranscribeHandler struct {
	transcribeService service.TranscribeService
	resolver          middleware.SessionResolver
}

func NewTranscribeHandler(transcribeService service.TranscribeService, resolver middleware.SessionResolver) *TranscribeHandler {
	return &TranscribeHandler{transcribeService: transcribeService, resolver: resolver}
}

func (h *TranscribeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/orders/from-audio", middleware.RequireAuth(h.resolver), h.ExtractFromAudio)
}

// ExtractFromAudio handles POST /orders/from-audio
// @Summary      Extract order lines from audio
// @Description  Sends the uploaded conversation audio to the speech service and returns the confirmed order lines matched against the caller's product catalog
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        audio  formData  file  true  "Audio file"
// @Success      200    {object}  response.Response{data=object}
// @Failure      400    {object}  response.Response
// @Router       /orders/from-audio [post]
func (h *TranscribeHandler) ExtractFromAudio(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Please upload an audio file"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read uploaded file"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read uploaded file"))
		return
	}

	mimeType := sniffAudioType(audio, fileHeader.Header.Get("Content-Type"))
	if !allowedAudioTypes[mimeType] {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid file type: only audio files are accepted"))
		return
	}

	filename := time.Now().UTC().Format(time.RFC3339) + "_" + fileHeader.Filename

	items, err := h.transcribeService.ExtractFromAudio(c.Request.Context(), identity, audio, mimeType, filename)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
	}))
}

// sniffAudioType detects the content type from the bytes and falls back to
// the declared header for formats http.DetectContentType cannot identify.
func sniffAudioType(data []byte, declared string) string {
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "audio/") {
		return detected
	}
	if declared != "" {
		// Strip any charset parameter
		if idx := strings.Index(declared, ";"); idx >= 0 {
			declared = declared[:idx]
		}
		return strings.TrimSpace(declared)
	}
	return detected
}
