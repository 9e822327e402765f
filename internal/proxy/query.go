package proxy

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/whizzzkid/instagram-proxy-api/internal/instagram"
)

// Request is an immutable view of one inbound call: where the client reached
// us and what they asked for. Scheme and Host are used to rebuild pagination
// links that point back at this proxy.
type Request struct {
	Scheme  string
	Host    string
	Path    string
	Query   url.Values
	Referer string
}

// Limits is the count-clamping policy applied to GraphQL queries.
type Limits struct {
	// Max is the upper bound on the per-page item count.
	Max int

	// Default is used when the client sends no count.
	Default int
}

// clamp resolves a raw count parameter against the policy. An absent or
// unparsable count falls back to the default.
func (l Limits) clamp(raw string) int {
	n := l.Default
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	if n > l.Max {
		n = l.Max
	}
	return n
}

// userMediaQuery targets the legacy per-user media endpoint. Inbound query
// parameters are forwarded as-is (including any max_id/min_id the client got
// from a previous "next" link); callback is proxy-level JSONP plumbing and
// stays here.
func userMediaQuery(username string, inbound url.Values) instagram.Query {
	params := cloneQuery(inbound)
	params.Del("callback")
	return instagram.Query{
		Path:   "/" + username + "/media/",
		Params: params,
	}
}

type timelineVariables struct {
	ID    string `json:"id"`
	First int    `json:"first"`
	After string `json:"after,omitempty"`
}

type tagMediaVariables struct {
	TagName string `json:"tag_name"`
	First   int    `json:"first"`
	After   string `json:"after,omitempty"`
}

// userTimelineQuery targets the GraphQL endpoint with the user-timeline
// query.
func userTimelineQuery(userID string, count int, cursor string) instagram.Query {
	vars, _ := json.Marshal(timelineVariables{
		ID:    userID,
		First: count,
		After: cursor,
	})
	return graphQLQuery(instagram.UserTimelineQueryID, vars)
}

// tagMediaQuery targets the GraphQL endpoint with the hashtag-media query.
func tagMediaQuery(tag string, count int, cursor string) instagram.Query {
	vars, _ := json.Marshal(tagMediaVariables{
		TagName: tag,
		First:   count,
		After:   cursor,
	})
	return graphQLQuery(instagram.TagMediaQueryID, vars)
}

func graphQLQuery(queryID string, variables []byte) instagram.Query {
	params := url.Values{}
	params.Set("query_id", queryID)
	params.Set("variables", string(variables))
	return instagram.Query{
		Path:   "/graphql/query/",
		Params: params,
	}
}

// passthroughQuery forwards the inbound path and query verbatim. Only valid
// for explicitly advanced requests (__a=1) on a non-root path; anything else
// is an invalid query.
func passthroughQuery(req Request) (instagram.Query, error) {
	if req.Path == "/" || req.Query.Get("__a") != "1" {
		return instagram.Query{}, &Error{
			Code: CodeInvalidQuery,
			Desc: "advanced requests need __a=1 and a non-root path",
			Info: fmt.Sprintf("path %q", req.Path),
		}
	}

	params := cloneQuery(req.Query)
	params.Del("callback")
	return instagram.Query{
		Path:   req.Path,
		Params: params,
	}, nil
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
