package browser

import (
	"strings"

	"github.com/go-rod/rod/lib/proto"

	"review-harvester/internal/session"
)

// toCookieParams converts stored cookies into CDP parameters, dropping
// nameless entries.
func toCookieParams(cookies []session.Cookie, fallbackURL string) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == nil || *c.Name == "" {
			continue
		}

		param := &proto.NetworkCookieParam{Name: *c.Name}
		if c.Value != nil {
			param.Value = *c.Value
		}
		if c.Domain != nil && *c.Domain != "" {
			param.Domain = *c.Domain
		} else {
			param.URL = fallbackURL
		}
		if c.Path != nil {
			param.Path = *c.Path
		}
		if c.Expires != nil && *c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(*c.Expires)
		}
		if c.HTTPOnly != nil {
			param.HTTPOnly = *c.HTTPOnly
		}
		if c.Secure != nil {
			param.Secure = *c.Secure
		}
		if c.SameSite != nil {
			param.SameSite = normalizeSameSite(*c.SameSite)
		}

		params = append(params, param)
	}
	return params
}

// normalizeSameSite maps browser-extension spellings onto CDP values.
// Unknown values are left unset.
func normalizeSameSite(value string) proto.NetworkCookieSameSite {
	switch strings.ToLower(value) {
	case "lax":
		return proto.NetworkCookieSameSiteLax
	case "strict":
		return proto.NetworkCookieSameSiteStrict
	case "none", "no_restriction":
		return proto.NetworkCookieSameSiteNone
	}
	return ""
}

// fromNetworkCookies converts live browser cookies into the stored form.
// Session cookies are written without an expiry.
func fromNetworkCookies(cookies []*proto.NetworkCookie) []session.Cookie {
	out := make([]session.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}

		stored := session.Cookie{
			Name:     ptr(c.Name),
			Value:    ptr(c.Value),
			Domain:   ptr(c.Domain),
			Path:     ptr(c.Path),
			HTTPOnly: ptr(c.HTTPOnly),
			Secure:   ptr(c.Secure),
		}
		if !c.Session && c.Expires > 0 {
			stored.Expires = ptr(float64(c.Expires))
		}
		if c.SameSite != "" {
			stored.SameSite = ptr(string(c.SameSite))
		}
		out = append(out, stored)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
