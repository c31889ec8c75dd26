package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/store"
)

const ClothingPrompt llm.Prompt = `You are a helpful fashion and weather assistant.
Generate clothing recommendations based on the following weather forecast and available clothing items.

Weather forecast:
- Temperature: {temperature}°C
- Conditions: {conditions}
- Description: {description}

Available clothing items:
{inventory}
{extras}
Provide clothing recommendations with:
1. A summary of the weather and how to dress for it
2. Specific clothing items to wear from the available inventory
3. Additional tips based on the weather conditions

Respond with a JSON object in this format:
{
    "summary": "A summary of the weather and general clothing advice",
    "outfit": {
        "top": ["item_id", "description"],
        "bottom": ["item_id", "description"],
        "footwear": ["item_id", "description"],
        "accessories": [["item_id", "description"]]
    },
    "tips": ["tip1", "tip2"]
}`

// UserLookup resolves the requesting user.
type UserLookup interface {
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
}

// Recommender combines the day's forecast, the user's wardrobe and the model.
type Recommender struct {
	forecasts Forecaster
	users     UserLookup
	gen       llm.Generator
}

func NewRecommender(forecasts Forecaster, users UserLookup, gen llm.Generator) *Recommender {
	return &Recommender{forecasts: forecasts, users: users, gen: gen}
}

// Recommend returns ErrForecastUnavailable when date is outside the forecast
// window and ErrUpstream when the provider fails. A model failure degrades to
// a summary-only recommendation.
func (r *Recommender) Recommend(ctx context.Context, req models.DressRequest) (models.DressResponse, error) {
	forecast, err := r.forecasts.Forecast(ctx, req.Location)
	if err != nil {
		return models.DressResponse{}, err
	}
	cond, err := SelectNoon(forecast, req.Date)
	if err != nil {
		return models.DressResponse{}, err
	}

	wardrobe, err := r.wardrobeFor(ctx, req.UserID)
	if err != nil {
		return models.DressResponse{}, err
	}

	return models.DressResponse{
		Date:            req.Date,
		Location:        req.Location,
		WeatherSummary:  cond.Summary,
		Temperature:     cond.Temperature,
		Conditions:      cond.Conditions,
		Recommendations: r.recommendations(ctx, cond, wardrobe, req),
	}, nil
}

func (r *Recommender) wardrobeFor(ctx context.Context, userID int64) (Wardrobe, error) {
	if r.users != nil {
		emp, err := r.users.GetEmployee(ctx, userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Warn().Int64("user_id", userID).Msg("user not found, using demo wardrobe")
		case err != nil:
			return Wardrobe{}, fmt.Errorf("lookup user %d: %w", userID, err)
		default:
			log.Info().Int64("user_id", emp.ID).Str("name", emp.Name).Msg("wardrobe user resolved")
		}
	}
	return DemoWardrobe(), nil
}

func (r *Recommender) recommendations(ctx context.Context, cond Conditions, w Wardrobe, req models.DressRequest) map[string]any {
	inventory, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fallbackRecommendation(fmt.Sprintf("Error generating recommendations: %v", err))
	}

	var extras strings.Builder
	if req.Occasion != "" {
		extras.WriteString("Occasion: " + req.Occasion + "\n")
	}
	if req.Preferences != "" {
		extras.WriteString("Preferences: " + req.Preferences + "\n")
	}

	reply, err := r.gen.Generate(ctx, ClothingPrompt, llm.Bindings{
		"temperature": strconv.FormatFloat(cond.Temperature, 'f', -1, 64),
		"conditions":  cond.Conditions,
		"description": cond.Description,
		"inventory":   string(inventory),
		"extras":      extras.String(),
	})
	if err != nil {
		log.Error().Err(err).Msg("clothing recommendation failed")
		return fallbackRecommendation(fmt.Sprintf("Error generating recommendations: %v", err))
	}

	text := unfence(strings.TrimSpace(reply))
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return fallbackRecommendation(text)
	}
	return out
}

// unfence returns the body of the first ```json (or bare ```) block, else s.
func unfence(s string) string {
	if _, after, ok := strings.Cut(s, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(s, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return s
}

func fallbackRecommendation(summary string) map[string]any {
	return map[string]any{
		"summary": summary,
		"outfit":  map[string]any{},
		"tips":    []any{},
	}
}
