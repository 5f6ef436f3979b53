package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/cipr/storefront/pkg/errors"
	"github.com/cipr/storefront/pkg/slug"
)

// Category is the canonical product category derived during normalization.
type Category string

const (
	CategoryTShirt        Category = "T-SHIRT"
	CategoryDress         Category = "DRESS"
	CategorySuit          Category = "SUIT"
	CategoryShort         Category = "SHORT"
	CategoryJacket        Category = "JACKET"
	CategorySportwear     Category = "SPORTWEAR"
	CategoryShoes         Category = "SHOES"
	CategoryCoat          Category = "COAT"
	CategoryHat           Category = "HAT"
	CategoryPyjamas       Category = "PYJAMAS"
	CategoryUndies        Category = "UNDIES"
	CategoryUncategorized Category = "UNCATEGORIZED"
)

// categoryVocabulary maps the lower-case description token to its category.
var categoryVocabulary = map[string]Category{
	"t-shirt":   CategoryTShirt,
	"dress":     CategoryDress,
	"suit":      CategorySuit,
	"short":     CategoryShort,
	"jacket":    CategoryJacket,
	"sportwear": CategorySportwear,
	"shoes":     CategoryShoes,
	"coat":      CategoryCoat,
	"hat":       CategoryHat,
	"pyjamas":   CategoryPyjamas,
	"undies":    CategoryUndies,
}

// Attribute vocabularies scanned over description tokens. First match in
// token order wins.
var (
	sizeVocabulary   = []string{"xs", "s", "m", "l", "xl", "2xl"}
	colorVocabulary  = []string{"black", "white", "blue", "red", "green", "yellow"}
	genderVocabulary = []string{"m", "f", "male", "female", "kid", "adult", "teen", "baby"}
	seasonVocabulary = []string{"spring", "summer", "fall", "winter"}
)

// Product is the canonical product entity derived from a raw backend record.
// Normalization is deterministic: the same raw record always yields the same
// Product. Presentation-only decoration (ratings, synthetic discounts) is
// deliberately absent.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Size        string   `json:"size,omitempty"`
	Color       string   `json:"color,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Season      string   `json:"season,omitempty"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

// Normalize converts a raw backend product record into a canonical Product.
// It is total for structurally-present records; the only failure is a record
// whose identity field is absent or empty.
func Normalize(raw map[string]any) (*Product, error) {
	id := coerceID(raw["id"])
	if id == "" {
		return nil, apperrors.InvalidRecord("product record has no id")
	}

	name := coerceString(raw["name"])
	tokens := descriptionTokens(raw["description"])

	category := CategoryUncategorized
	// Only the first token is checked against the category vocabulary.
	// Records that mention the category later in the description stay
	// UNCATEGORIZED; image resolution and category filters depend on this.
	if len(tokens) > 0 {
		if c, ok := categoryVocabulary[strings.ToLower(tokens[0])]; ok {
			category = c
		}
	}

	p := &Product{
		ID:          id,
		Name:        name,
		Slug:        slug.Generate(name),
		Price:       CoercePrice(raw["price"]),
		Category:    category,
		Size:        strings.ToUpper(scanVocabulary(tokens, sizeVocabulary)),
		Color:       scanVocabulary(tokens, colorVocabulary),
		Gender:      scanVocabulary(tokens, genderVocabulary),
		Season:      scanVocabulary(tokens, seasonVocabulary),
		Description: strings.Join(tokens, " "),
	}

	p.Image = ResolveImage(category, coerceString(raw["image"]), id)
	p.Images = ResolveGallery(category)

	return p, nil
}

// CoercePrice parses the raw price field into a non-negative amount.
// Anything unparseable, absent, or negative yields 0.
func CoercePrice(v any) float64 {
	var price float64
	switch t := v.(type) {
	case float64:
		price = t
	case int:
		price = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		price = parsed
	default:
		return 0
	}
	if price < 0 {
		return 0
	}
	return price
}

// descriptionTokens flattens the raw description field into tokens: arrays
// are used element-wise, strings are split on whitespace, anything else is
// empty.
func descriptionTokens(v any) []string {
	switch t := v.(type) {
	case []any:
		tokens := make([]string, 0, len(t))
		for _, e := range t {
			if s := coerceString(e); s != "" {
				tokens = append(tokens, s)
			}
		}
		return tokens
	case []string:
		tokens := make([]string, 0, len(t))
		for _, s := range t {
			if s != "" {
				tokens = append(tokens, s)
			}
		}
		return tokens
	case string:
		return strings.Fields(t)
	default:
		return nil
	}
}

// scanVocabulary returns the first token (in token order) present in the
// vocabulary, compared case-insensitively. Returns "" when nothing matches.
func scanVocabulary(tokens, vocabulary []string) string {
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		for _, v := range vocabulary {
			if lower == v {
				return lower
			}
		}
	}
	return ""
}

// coerceID renders the raw id field as a string. Absent, empty, and zero
// values are all treated as missing.
func coerceID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
