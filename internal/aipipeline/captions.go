package aipipeline

// CaptionSet holds social captions per platform. All three keys are always present.
type CaptionSet struct {
	Instagram []string `json:"instagram"`
	Facebook  []string `json:"facebook"`
	WhatsApp  []string `json:"whatsapp"`
}

// NormalizeCaptions reads the platform keys case-insensitively and coerces
// their values to string sequences; missing platforms come back empty.
func NormalizeCaptions(recovered map[string]any) CaptionSet {
	return CaptionSet{
		Instagram: captionsFor(recovered, "instagram"),
		Facebook:  captionsFor(recovered, "facebook"),
		WhatsApp:  captionsFor(recovered, "whatsapp"),
	}
}

func captionsFor(recovered map[string]any, platform string) []string {
	_, value, ok := LookupFold(recovered, platform)
	if !ok {
		return []string{}
	}
	return ToStrings(value)
}
