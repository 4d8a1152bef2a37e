package models

// ReviewDraft is a review as read from the page, before a reviewer name is attached
type ReviewDraft struct {
	Text   string   `json:"text"`
	Rating int      `json:"rating" validate:"gte=0,lte=5"`
	Images []string `json:"images"`
}

// Review is an enriched review ready to be returned or exported
type Review struct {
	ReviewDraft
	Name string `json:"name"`
}
