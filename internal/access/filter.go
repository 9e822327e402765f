// Package access decides whether an inbound request may use the proxy, based
// on the request's Referer header and a blacklist of abusive domains.
package access

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is a bloom filter over blacklisted domains. It answers "possibly
// blacklisted" or "definitely not blacklisted": a false result from
// MayContain is always correct, a true result may be a false positive at the
// configured rate. A false positive over-blocks a referer, which is the
// acceptable direction of error for a blacklist.
type Filter struct {
	bf *bloom.BloomFilter
}

// NewFilter builds a filter sized for the given domains at the target
// false-positive rate. Every domain is normalized before insertion. The
// filter is immutable once built and safe for unsynchronized concurrent
// reads.
func NewFilter(domains []string, falsePositiveRate float64) *Filter {
	n := uint(len(domains))
	if n == 0 {
		n = 1
	}

	bf := bloom.NewWithEstimates(n, falsePositiveRate)
	for _, d := range domains {
		bf.AddString(Normalize(d))
	}

	return &Filter{bf: bf}
}

// MayContain reports whether domain may be blacklisted. Domains actually
// inserted always test true.
func (f *Filter) MayContain(domain string) bool {
	return f.bf.TestString(Normalize(domain))
}
