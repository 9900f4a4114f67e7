package utils

import (
	"regexp"
	"strings"
)

// Marker symbols. Every persisted marker carries one of these.
const (
	EmojiPizza   = "\U0001F355" // 🍕
	EmojiBurger  = "\U0001F354" // 🍔
	EmojiSushi   = "\U0001F363" // 🍣
	EmojiRamen   = "\U0001F35C" // 🍜
	EmojiTaco    = "\U0001F32E" // 🌮
	EmojiSteak   = "\U0001F969" // 🥩
	EmojiCoffee  = "\u2615"     // ☕
	EmojiBakery  = "\U0001F950" // 🥐
	EmojiDessert = "\U0001F366" // 🍦
	EmojiBoba    = "\U0001F9CB" // 🧋
	EmojiBar     = "\U0001F37A" // 🍺
	EmojiSalad   = "\U0001F957" // 🥗
	EmojiPin     = "\U0001F4CD" // 📍
)

type emojiRule struct {
	pattern *regexp.Regexp
	emoji   string
}

// Order is significant: the first matching rule wins.
var emojiRules = []emojiRule{
	{regexp.MustCompile(`pizza|pizzeria|slice`), EmojiPizza},
	{regexp.MustCompile(`burger|hamburger|cheeseburger`), EmojiBurger},
	{regexp.MustCompile(`sushi|japanese|omakase|nigiri|roll`), EmojiSushi},
	{regexp.MustCompile(`ramen|noodle`), EmojiRamen},
	{regexp.MustCompile(`taco|burrito|mexican|taqueria`), EmojiTaco},
	{regexp.MustCompile(`bbq|barbecue|steak|grill|steakhouse`), EmojiSteak},
	{regexp.MustCompile(`coffee|cafe|espresso|latte`), EmojiCoffee},
	{regexp.MustCompile(`bakery|pastry|croissant|bread`), EmojiBakery},
	{regexp.MustCompile(`ice cream|gelato|dessert|sweet|cake`), EmojiDessert},
	{regexp.MustCompile(`tea|boba|bubble tea`), EmojiBoba},
	{regexp.MustCompile(`bar|cocktail|wine|brewery|beer`), EmojiBar},
	{regexp.MustCompile(`salad|vegan|vegetarian|plant-based`), EmojiSalad},
}

var knownEmoji = func() map[string]struct{} {
	set := map[string]struct{}{EmojiPin: {}}
	for _, rule := range emojiRules {
		set[rule.emoji] = struct{}{}
	}
	return set
}()

// ClassifyEmoji picks a marker symbol from cuisine text, falling back to
// free text such as the place name and address. No match yields the pin.
func ClassifyEmoji(cuisine, fallback string) string {
	text := strings.ToLower(cuisine + " " + fallback)
	for _, rule := range emojiRules {
		if rule.pattern.MatchString(text) {
			return rule.emoji
		}
	}
	return EmojiPin
}

// NormalizeEmoji trims s and substitutes the pin for an empty value.
func NormalizeEmoji(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return EmojiPin
	}
	return s
}

// IsKnownEmoji reports whether s is one of the marker symbols.
func IsKnownEmoji(s string) bool {
	_, ok := knownEmoji[s]
	return ok
}
