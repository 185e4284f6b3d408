package assets

import (
	"fmt"

	"github.com/yourorg/listings-api/internal/store"
)

// Social asset formats agents publish.
const (
	TypePost       = "post"
	TypeReelsShort = "reels_short"
	TypeReelsLong  = "reels_long"
	TypeReelsDeep  = "reels_deep"
	TypeCarousel   = "carousel"
)

func ValidType(t string) bool {
	switch t {
	case TypePost, TypeReelsShort, TypeReelsLong, TypeReelsDeep, TypeCarousel:
		return true
	}
	return false
}

// BuildPrompt renders the image-generation prompt for one asset type. Each
// format carries its own art direction; unknown types get a generic prompt.
func BuildPrompt(assetType string, l store.Listing) string {
	address := l.AddressLine + ", " + l.Suburb
	beds := l.Beds.Int64
	baths := l.Baths.Int64
	land := l.LandSizeSqm.Int64

	switch assetType {
	case TypePost:
		return fmt.Sprintf("Create a professional Instagram square post for a luxury real estate property at %s. %d bedrooms, %d bathrooms, %d sqm land. Modern architectural design with clean lines, timber cladding, and premium finishes. Make it elegant, aspirational, and suitable for luxury property marketing. Include subtle property details overlay.",
			address, beds, baths, land)
	case TypeReelsShort:
		return fmt.Sprintf("Create a dynamic Instagram reel cover for a luxury property at %s. %dBR/%dBA modern home. Eye-catching, vertical format, perfect for a quick property tour video. Bold, energetic, premium feel.",
			address, beds, baths)
	case TypeReelsLong:
		return fmt.Sprintf("Create a cinematic Instagram reel thumbnail for an in-depth property tour of %s. Showcase the modern architecture, %d bedrooms, %d bathrooms. Sophisticated, high-end, worthy of a luxury home walkthrough video.",
			address, beds, baths)
	case TypeReelsDeep:
		return fmt.Sprintf("Create an emotional, storytelling Instagram reel cover for %s. Focus on the lifestyle and experience of living in this %d bedroom architectural masterpiece. Warm, inviting, aspirational. Perfect for a deep-dive property story.",
			address, beds)
	case TypeCarousel:
		return fmt.Sprintf(`Create the first slide of an Instagram carousel post for %s. Modern luxury property, %dBR/%dBA, %dsqm. Include text overlay saying "SWIPE FOR MORE" or similar. Clean, elegant design suitable for premium real estate.`,
			address, beds, baths, land)
	default:
		return fmt.Sprintf("Create a professional social media image for a luxury property at %s. Modern design, %d bedrooms, %d bathrooms. Premium real estate marketing image.",
			address, beds, baths)
	}
}
