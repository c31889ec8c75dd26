package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/weather"
)

type Recommender interface {
	Recommend(ctx context.Context, req models.DressRequest) (models.DressResponse, error)
}

// WeatherHandler handles POST /api/weather-assistant/dress-recommendation
type WeatherHandler struct {
	rec Recommender
}

func NewWeatherHandler(rec Recommender) *WeatherHandler {
	return &WeatherHandler{rec: rec}
}

func (h *WeatherHandler) DressRecommendation(w http.ResponseWriter, r *http.Request) {
	var req models.DressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.rec.Recommend(r.Context(), req)
	switch {
	case err == nil:
		models.WriteJSON(w, http.StatusOK, resp)
	case errors.Is(err, weather.ErrForecastUnavailable):
		models.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrUpstream):
		log.Error().Err(err).Str("location", req.Location).Msg("weather provider failed")
		models.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error().Err(err).Str("location", req.Location).Msg("dress recommendation failed")
		models.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
