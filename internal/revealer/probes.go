package revealer

// Tier groups container probes by how specific they are
type Tier string

const (
	TierContent  Tier = "content"
	TierModal    Tier = "modal"
	TierOverflow Tier = "overflow"
	TierBody     Tier = "body"
	TierNone     Tier = "none"
)

// ContainerProbe describes one candidate scroll container.
// With ScanAll every match is tried in document order, otherwise only the first.
// RequireOverflow accepts a match only when its content is taller than its box.
type ContainerProbe struct {
	Tier            Tier
	Selector        string
	ScanAll         bool
	RequireOverflow bool
}

var contentSelectors = []string{
	".feedback-list-container",
	".review-list-container",
	".comet-v2-drawer-body",
	".comet-v2-modal-body",
	`[class*="list"][class*="container"]`,
	`[class*="feedback"][class*="container"]`,
	`[class*="review"][class*="container"]`,
	`[class*="scroller"]`,
	`[class*="scroll-container"]`,
}

var modalSelectors = []string{
	".review-modal",
	".feedback-modal",
	".comet-v2-drawer-content",
	".comet-v2-modal-content",
	`[class*="modal"][class*="review"]`,
	`[class*="drawer"][class*="review"]`,
	`[role="dialog"]`,
}

const overflowSelector = `[style*="overflow"][style*="auto"], [style*="overflow"][style*="scroll"], [class*="scroll"]`

// DefaultProbes returns the container probes in resolution order:
// content containers, modal containers, overflow-styled elements, then the body.
func DefaultProbes() []ContainerProbe {
	probes := make([]ContainerProbe, 0, len(contentSelectors)+len(modalSelectors)+2)
	for _, sel := range contentSelectors {
		probes = append(probes, ContainerProbe{Tier: TierContent, Selector: sel, RequireOverflow: true})
	}
	for _, sel := range modalSelectors {
		probes = append(probes, ContainerProbe{Tier: TierModal, Selector: sel, RequireOverflow: true})
	}
	probes = append(probes,
		ContainerProbe{Tier: TierOverflow, Selector: overflowSelector, ScanAll: true, RequireOverflow: true},
		ContainerProbe{Tier: TierBody, Selector: "body"},
	)
	return probes
}
