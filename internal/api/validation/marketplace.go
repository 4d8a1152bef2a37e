package validation

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"review-harvester/pkg/utils"
)

// New returns a validator with the marketplace rule bound to domain
func New(domain string) *validator.Validate {
	v := validator.New()
	RegisterMarketplaceValidator(v, domain)
	return v
}

// RegisterMarketplaceValidator registers the "marketplace" tag, which accepts
// only http(s) URLs whose host is domain or one of its subdomains.
func RegisterMarketplaceValidator(v *validator.Validate, domain string) {
	_ = v.RegisterValidation("marketplace", func(fl validator.FieldLevel) bool {
		return IsMarketplaceURL(fl.Field().String(), domain)
	})
}

// IsMarketplaceURL reports whether raw is an http(s) URL on domain
func IsMarketplaceURL(raw, domain string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return utils.HostMatchesDomain(u.Hostname(), domain)
}
