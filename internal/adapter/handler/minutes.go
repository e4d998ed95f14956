package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes-service/errors"
	minutesdto "github.com/johnquangdev/minutes-service/internal/adapter/dto/minutes"
	"github.com/johnquangdev/minutes-service/internal/usecase/minutes"
)

// Minutes handles the meeting-minutes pipeline endpoints
type Minutes struct {
	service minutes.Service
	logger  *zap.Logger
}

// NewMinutes creates a new minutes handler
func NewMinutes(service minutes.Service, logger *zap.Logger) *Minutes {
	return &Minutes{
		service: service,
		logger:  logger,
	}
}

// Process runs the full pipeline. Accepts multipart form data with either an
// "audio" file or a "transcript" text field, plus an optional "language".
// Audio wins when both are present.
func (h *Minutes) Process(c echo.Context) error {
	ctx := c.Request().Context()

	input := minutes.Input{
		Language: c.FormValue("language"),
	}

	if fileHeader, err := c.FormFile("audio"); err == nil && fileHeader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("failed to read audio upload"))
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("failed to read audio upload"))
		}
		input.Audio = &minutes.AudioBlob{
			Data:     data,
			Filename: fileHeader.Filename,
		}
	}

	// The transcript arrives either as an uploaded file part or as a plain
	// form value; the file part wins.
	if fileHeader, err := c.FormFile("transcript"); err == nil && fileHeader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("failed to read transcript upload"))
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("failed to read transcript upload"))
		}
		input.Transcript = data
	} else if transcript := c.FormValue("transcript"); transcript != "" {
		input.Transcript = []byte(transcript)
	}

	result, err := h.service.Process(ctx, input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, minutesdto.FromResult(result))
}

// Clean runs only the transcript cleaning stage
func (h *Minutes) Clean(c echo.Context) error {
	req, err := h.bindTextRequest(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	cleaned, err := h.service.Clean(c.Request().Context(), req.Text)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, minutesdto.CleanResponse{CleanedText: cleaned})
}

// Summarize runs only the summarization stage
func (h *Minutes) Summarize(c echo.Context) error {
	req, err := h.bindTextRequest(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	summary, err := h.service.Summarize(c.Request().Context(), req.Text, req.Language)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, summary)
}

// Diarize runs only the speaker attribution stage
func (h *Minutes) Diarize(c echo.Context) error {
	req, err := h.bindTextRequest(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	segments, err := h.service.Diarize(c.Request().Context(), req.Text)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, minutesdto.DiarizeResponse{Segments: segments})
}

// Extract runs only the action item and decision extraction stage
func (h *Minutes) Extract(c echo.Context) error {
	req, err := h.bindTextRequest(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	items, decisions, err := h.service.Extract(c.Request().Context(), req.Text)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, minutesdto.ExtractResponse{
		ActionItems: items,
		Decisions:   decisions,
	})
}

func (h *Minutes) bindTextRequest(c echo.Context) (*minutesdto.TextRequest, error) {
	var req minutesdto.TextRequest
	if err := c.Bind(&req); err != nil {
		return nil, errors.ErrInvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return nil, errors.ErrInvalidArgument("text is required")
	}
	return &req, nil
}
