package handler

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/podpod/api/internal/model"
	"github.com/podpod/api/internal/service"
	"github.com/podpod/api/pkg/response"
)

type GenerateHandler struct {
	service *service.GenerateService
}

func NewGenerateHandler(svc *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{service: svc}
}

// Generate handles POST /generate. The response is JSON with the audio URL
// when a podcast_id is supplied, or the raw audio bytes when it is not. Every
// failure surfaces as a 500 with the reason in the detail field.
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	start := time.Now()
	requestID := fmt.Sprintf("req_%s", uuid.New().String()[:8])

	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[%s] ERROR - Invalid request body: %v", requestID, err)
		return response.ServiceError(c, err.Error())
	}

	podcastID := req.PodcastID
	if podcastID == "" {
		podcastID = "not_provided"
	}
	log.Printf("NEW REQUEST [%s] - podcast_id: %s", requestID, podcastID)

	outcome, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		log.Printf("[%s] ERROR - Duration: %.1fs, Error: %v", requestID, time.Since(start).Seconds(), err)
		return response.ServiceError(c, err.Error())
	}

	if outcome.Audio != nil {
		log.Printf("[%s] SUCCESS - Duration: %.1fs, Audio: %d bytes", requestID, time.Since(start).Seconds(), len(outcome.Audio))
		return response.Audio(c, outcome.Audio, "audio/mpeg")
	}

	log.Printf("[%s] SUCCESS - Duration: %.1fs, Audio uploaded to S3", requestID, time.Since(start).Seconds())
	return response.OK(c, model.GenerateResponse{AudioURL: outcome.AudioURL})
}
