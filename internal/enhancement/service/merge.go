package service

import "marketplace_backend/internal/aipipeline"

// MergeEnhancedImages replaces stored pairs keyed by source URL. Fresh
// results win; stored pairs survive only while their source image is still
// on the product. The output follows productImages order.
func MergeEnhancedImages(existing []aipipeline.EnhancedImagePair, productImages []string, fresh []aipipeline.EnhancedImagePair) []aipipeline.EnhancedImagePair {
	byOriginal := make(map[string]aipipeline.EnhancedImagePair, len(existing)+len(fresh))
	for _, pair := range existing {
		byOriginal[pair.Original] = pair
	}
	for _, pair := range fresh {
		byOriginal[pair.Original] = pair
	}

	merged := make([]aipipeline.EnhancedImagePair, 0, len(productImages))
	seen := make(map[string]struct{}, len(productImages))
	for _, url := range productImages {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		if pair, ok := byOriginal[url]; ok {
			merged = append(merged, pair)
		}
	}
	return merged
}
