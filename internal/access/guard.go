package access

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Decision is the outcome of a referer check.
type Decision int

const (
	Allow Decision = iota
	Deny
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Guard applies the referer policy: extract the registrable domain from the
// Referer header and deny the request if the blacklist filter may contain it.
type Guard struct {
	filter         *Filter
	allowUndefined bool
}

// NewGuard creates a Guard over the given filter. allowUndefinedReferer
// controls what happens when a request carries no usable referer.
func NewGuard(filter *Filter, allowUndefinedReferer bool) *Guard {
	return &Guard{
		filter:         filter,
		allowUndefined: allowUndefinedReferer,
	}
}

// Check evaluates a raw Referer header value and returns the decision along
// with the registrable domain it was based on (empty when no domain could be
// extracted). The literal string "undefined" is treated the same as an absent
// header; some embedding clients send it verbatim. An unparsable referer
// follows the same policy as an absent one.
func (g *Guard) Check(referer string) (Decision, string) {
	if referer == "" || referer == "undefined" {
		if g.allowUndefined {
			return Allow, ""
		}
		return Deny, ""
	}

	domain, err := RegistrableDomain(referer)
	if err != nil {
		if g.allowUndefined {
			return Allow, ""
		}
		return Deny, ""
	}

	if g.filter.MayContain(domain) {
		return Deny, domain
	}
	return Allow, domain
}

// RegistrableDomain reduces a referer URL to its organization-level domain,
// e.g. "https://sub.example.co.uk/page" -> "example.co.uk".
func RegistrableDomain(referer string) (string, error) {
	u, err := url.Parse(referer)
	if err != nil {
		return "", fmt.Errorf("parse referer: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		// Referers without a scheme ("example.com/page") parse as a bare
		// path. Retry with one prepended.
		u, err = url.Parse("http://" + referer)
		if err != nil {
			return "", fmt.Errorf("parse referer: %w", err)
		}
		host = u.Hostname()
	}
	if host == "" {
		return "", fmt.Errorf("referer %q has no host", referer)
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return "", fmt.Errorf("registrable domain of %q: %w", host, err)
	}
	return domain, nil
}

// Normalize reduces a blacklist entry to its registrable domain. Entries are
// expected to already be bare domains; normalizing a normalized domain
// returns it unchanged.
func Normalize(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")

	if strings.Contains(d, "://") || strings.Contains(d, "/") {
		if r, err := RegistrableDomain(d); err == nil {
			return r
		}
	}

	if etld, err := publicsuffix.EffectiveTLDPlusOne(d); err == nil {
		return etld
	}
	return d
}
