package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/pkg/utils"
)

// PlaceExtractionService asks a language model to pull a place out of a transcript
type PlaceExtractionService struct {
	generator providers.TextGenerator
	timeout   time.Duration
}

// NewPlaceExtractionService creates a new extraction service
func NewPlaceExtractionService(generator providers.TextGenerator, timeout time.Duration) *PlaceExtractionService {
	return &PlaceExtractionService{generator: generator, timeout: timeout}
}

// Extract never returns an error: a failed call or an unparseable answer is a
// failed outcome and the pipeline carries on without it.
func (s *PlaceExtractionService) Extract(ctx context.Context, transcript string) entities.StageOutcome[*entities.ExtractedPlaceInfo] {
	if strings.TrimSpace(transcript) == "" {
		return entities.Skipped[*entities.ExtractedPlaceInfo]("empty transcript")
	}
	if s.generator == nil {
		return entities.Skipped[*entities.ExtractedPlaceInfo]("no text generator configured")
	}

	runCtx, cancel := withStageTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(runCtx, BuildExtractionPrompt(transcript))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("provider", s.generator.Name()).
			Msg("Place extraction request failed")
		return entities.Failed[*entities.ExtractedPlaceInfo](fmt.Sprintf("%s request failed: %v", s.generator.Name(), err))
	}

	info, ok := ParsePlaceInfo(raw)
	if !ok {
		observability.LoggerFromContext(ctx).Warn().
			Str("provider", s.generator.Name()).
			Int("response_length", len(raw)).
			Msg("Place extraction response had no JSON object")
		return entities.Failed[*entities.ExtractedPlaceInfo]("response did not contain a JSON object")
	}
	return entities.Ok(&info)
}

// BuildExtractionPrompt renders the fixed instruction block followed by the transcript
func BuildExtractionPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString("You extract restaurant location info from transcripts.\n")
	b.WriteString("Return ONLY valid JSON with keys:\n")
	b.WriteString("placeName (string), address (string), city (string), cuisine (string), clues (string), confidence (number 0-1), emoji (string, single emoji).\n")
	b.WriteString("Choose the emoji based on cuisine:\n")
	for _, line := range []struct{ label, emoji string }{
		{"pizza", utils.EmojiPizza},
		{"burgers", utils.EmojiBurger},
		{"sushi/japanese", utils.EmojiSushi},
		{"ramen/noodles", utils.EmojiRamen},
		{"tacos/mexican", utils.EmojiTaco},
		{"bbq/steak", utils.EmojiSteak},
		{"coffee/cafe", utils.EmojiCoffee},
		{"bakery/dessert", utils.EmojiBakery},
		{"ice cream/dessert", utils.EmojiDessert},
		{"tea/boba", utils.EmojiBoba},
		{"bar/drinks", utils.EmojiBar},
		{"salad/vegan/vegetarian", utils.EmojiSalad},
	} {
		fmt.Fprintf(&b, "- %s -> %s\n", line.label, line.emoji)
	}
	fmt.Fprintf(&b, "If unknown, use empty strings and low confidence, and emoji %s.\n", utils.EmojiPin)
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

// ParsePlaceInfo decodes the substring between the first '{' and the last '}'
// of raw. Missing or mistyped fields take their defaults. ok is false when
// no object could be decoded.
func ParsePlaceInfo(raw string) (info entities.ExtractedPlaceInfo, ok bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return entities.ExtractedPlaceInfo{}, false
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return entities.ExtractedPlaceInfo{}, false
	}

	info = entities.ExtractedPlaceInfo{
		PlaceName:  stringField(fields, "placeName"),
		Address:    stringField(fields, "address"),
		City:       stringField(fields, "city"),
		Cuisine:    stringField(fields, "cuisine"),
		Clues:      stringField(fields, "clues"),
		Confidence: confidenceField(fields, "confidence"),
		Emoji:      utils.NormalizeEmoji(stringField(fields, "emoji")),
	}
	return info, true
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func confidenceField(fields map[string]interface{}, key string) float64 {
	var value float64
	switch v := fields[key].(type) {
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		value = parsed
	default:
		return 0
	}
	if math.IsNaN(value) {
		return 0
	}
	return math.Max(0, math.Min(1, value))
}

func withStageTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
