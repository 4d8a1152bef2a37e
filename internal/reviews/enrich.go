package reviews

import (
	"strings"

	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

// GenerateName draws one first, middle and last name from the pools
func GenerateName(r utils.Rand) string {
	return strings.Join([]string{
		pick(r, firstNames),
		pick(r, middleNames),
		pick(r, lastNames),
	}, " ")
}

// Enrich attaches an independently drawn reviewer name to each draft.
// Drafts are copied; the input slice is left untouched.
func Enrich(drafts []models.ReviewDraft, r utils.Rand) []models.Review {
	enriched := make([]models.Review, 0, len(drafts))
	for _, draft := range drafts {
		images := make([]string, len(draft.Images))
		copy(images, draft.Images)
		draft.Images = images

		enriched = append(enriched, models.Review{
			ReviewDraft: draft,
			Name:        GenerateName(r),
		})
	}
	return enriched
}

func pick(r utils.Rand, pool []string) string {
	return pool[r.IntN(len(pool))]
}
