// Package reviews post-processes extracted review drafts.
package reviews

import "review-harvester/pkg/models"

// Dedupe keeps the first draft for each distinct text, preserving order.
// Texts are compared byte for byte; the empty text is a key like any other.
func Dedupe(drafts []models.ReviewDraft) []models.ReviewDraft {
	unique := make([]models.ReviewDraft, 0, len(drafts))
	seen := make(map[string]struct{}, len(drafts))

	for _, draft := range drafts {
		if _, ok := seen[draft.Text]; ok {
			continue
		}
		seen[draft.Text] = struct{}{}
		unique = append(unique, draft)
	}

	return unique
}
