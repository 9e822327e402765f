package access

import (
	"fmt"
	"testing"

	"github.com/whizzzkid/instagram-proxy-api/internal/blacklist"
)

func TestFilterNoFalseNegatives(t *testing.T) {
	domains := append([]string(nil), blacklist.Default...)
	for i := 0; i < 500; i++ {
		domains = append(domains, fmt.Sprintf("inserted-%d.com", i))
	}

	f := NewFilter(domains, 0.01)

	for _, d := range domains {
		if !f.MayContain(d) {
			t.Errorf("inserted domain %q tested negative", d)
		}
	}
}

func TestFilterFalsePositiveRateBounded(t *testing.T) {
	domains := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		domains = append(domains, fmt.Sprintf("inserted-%d.com", i))
	}
	f := NewFilter(domains, 0.01)

	// Probe domains that were never inserted. At a 1% target the observed
	// rate over 2000 probes should stay well under 5%.
	falsePositives := 0
	const probes = 2000
	for i := 0; i < probes; i++ {
		if f.MayContain(fmt.Sprintf("never-inserted-%d.org", i)) {
			falsePositives++
		}
	}
	if falsePositives > probes/20 {
		t.Errorf("false positive rate too high: %d/%d", falsePositives, probes)
	}
}

func TestFilterEmptyList(t *testing.T) {
	f := NewFilter(nil, 0.01)
	if f.MayContain("anything.com") {
		t.Error("empty filter should contain nothing")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"example.com",
		"Example.COM ",
		"sub.example.co.uk",
		"https://sub.example.com/path",
		"example.com.",
		"not-a-real-tld.invalid",
	}
	for _, in := range cases {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(%q) not idempotent: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeReducesToRegistrableDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"sub.example.co.uk", "example.co.uk"},
		{"https://a.b.example.com/some/path", "example.com"},
		{"example.com.", "example.com"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	cases := []struct {
		referer string
		want    string
		wantErr bool
	}{
		{"http://example.com/page", "example.com", false},
		{"https://sub.example.co.uk/a?b=c", "example.co.uk", false},
		{"example.com/page", "example.com", false},
		{"HTTPS://WWW.EXAMPLE.COM", "example.com", false},
		{"http://exa mple.com/", "", true},
		{"http://com/", "", true},
	}
	for _, tc := range cases {
		got, err := RegistrableDomain(tc.referer)
		if tc.wantErr {
			if err == nil {
				t.Errorf("RegistrableDomain(%q) = %q, want error", tc.referer, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("RegistrableDomain(%q): %v", tc.referer, err)
			continue
		}
		if got != tc.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tc.referer, got, tc.want)
		}
	}
}

func TestGuardUndefinedReferer(t *testing.T) {
	f := NewFilter([]string{"blacklisted-domain.com"}, 0.01)

	for _, referer := range []string{"", "undefined"} {
		if d, _ := NewGuard(f, true).Check(referer); d != Allow {
			t.Errorf("allowUndefined=true, referer=%q: got %v, want allow", referer, d)
		}
		if d, _ := NewGuard(f, false).Check(referer); d != Deny {
			t.Errorf("allowUndefined=false, referer=%q: got %v, want deny", referer, d)
		}
	}
}

func TestGuardMalformedRefererFollowsUndefinedPolicy(t *testing.T) {
	f := NewFilter([]string{"blacklisted-domain.com"}, 0.01)
	malformed := "http://exa mple.com/"

	if d, _ := NewGuard(f, true).Check(malformed); d != Allow {
		t.Errorf("allowUndefined=true: got %v, want allow", d)
	}
	if d, _ := NewGuard(f, false).Check(malformed); d != Deny {
		t.Errorf("allowUndefined=false: got %v, want deny", d)
	}
}

func TestGuardBlacklistedReferer(t *testing.T) {
	f := NewFilter([]string{"blacklisted-domain.com"}, 0.01)
	g := NewGuard(f, false)

	cases := []string{
		"http://blacklisted-domain.com",
		"https://blacklisted-domain.com/some/page",
		"http://sub.blacklisted-domain.com/x",
	}
	for _, referer := range cases {
		d, domain := g.Check(referer)
		if d != Deny {
			t.Errorf("Check(%q) = %v, want deny", referer, d)
		}
		if domain != "blacklisted-domain.com" {
			t.Errorf("Check(%q) domain = %q, want blacklisted-domain.com", referer, domain)
		}
	}
}

func TestGuardAllowedReferer(t *testing.T) {
	f := NewFilter([]string{"blacklisted-domain.com"}, 0.01)
	g := NewGuard(f, false)

	d, domain := g.Check("https://friendly-site.net/embed")
	if d != Allow {
		t.Errorf("got %v, want allow", d)
	}
	if domain != "friendly-site.net" {
		t.Errorf("domain = %q, want friendly-site.net", domain)
	}
}
