package domain

import (
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"
)

// DefaultImage is the asset used whenever no better image can be resolved.
const DefaultImage = "/images/t-shirt1.png"

// categoryImages maps each canonical category to its ordered local asset list.
var categoryImages = map[Category][]string{
	CategoryTShirt: {
		"/images/t-shirt1.png",
		"/images/t-shirt2.png",
		"/images/t-shirt3.png",
		"/images/t-shirt4.png",
		"/images/t-shirt5.png",
		"/images/t-shirt6.png",
	},
	CategoryJacket: {
		"/images/jacket.png",
		"/images/jacket1.png",
	},
	CategoryCoat: {
		"/images/jacket.png",
		"/images/jacket1.png",
	},
	CategoryShort: {"/images/shorts.png"},
	CategoryPyjamas: {
		"/images/pjamas.avif",
		"/images/pjamas1.webp",
	},
	CategoryShoes: {
		"/images/shoes.avif",
		"/images/shoes1.webp",
		"/images/shoes3.webp",
		"/images/shoes4.jpg",
		"/images/shoes5.webp",
		"/images/shoes6.webp",
	},
	CategoryUndies: {
		"/images/undies.jpg",
		"/images/undies1.jpg",
	},
	CategoryDress: {"/images/t-shirt1.png"},
	CategorySuit: {
		"/images/jacket.png",
		"/images/jacket1.png",
	},
	CategorySportwear: {
		"/images/t-shirt3.png",
		"/images/t-shirt6.png",
		"/images/shorts.png",
	},
	CategoryHat: {"/images/t-shirt2.png"},
}

// ResolveImage picks the display image for a product. Mapped categories
// select deterministically by product id so the same product always renders
// the same asset; only a genuinely absent id falls back to random selection.
// Unmapped categories use the backend-provided image when present, else the
// default asset. Never fails.
func ResolveImage(category Category, apiImage, productID string) string {
	images, ok := categoryImages[category]
	if !ok || len(images) == 0 {
		if trimmed := strings.TrimSpace(apiImage); trimmed != "" {
			return trimmed
		}
		return DefaultImage
	}

	if len(images) == 1 {
		return images[0]
	}

	if productID != "" {
		return images[imageIndex(productID, len(images))]
	}

	return images[rand.Intn(len(images))]
}

// ResolveGallery returns the full ordered asset list for the category, or a
// single-element default when the category is unmapped. The result is never
// empty.
func ResolveGallery(category Category) []string {
	images, ok := categoryImages[category]
	if !ok || len(images) == 0 {
		return []string{DefaultImage}
	}
	out := make([]string, len(images))
	copy(out, images)
	return out
}

// imageIndex maps a product id onto an asset index. Numeric ids use the value
// modulo the list length; non-numeric ids hash with FNV-1a first so selection
// stays deterministic for any stable id.
func imageIndex(productID string, n int) int {
	if v, err := strconv.ParseUint(productID, 10, 64); err == nil {
		return int(v % uint64(n))
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return int(h.Sum32() % uint32(n))
}
