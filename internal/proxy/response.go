package proxy

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// reshapeLegacy reworks a legacy media payload: the items list is truncated
// to the inbound count and, when anything is left, next/previous links are
// synthesized from the first and last item ids. A payload without an items
// list is passed through unmodified, matching what the legacy endpoint does
// for error documents.
func reshapeLegacy(req Request, body []byte) (any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "could not parse upstream response",
			Info: err.Error(),
		}
	}

	raw, ok := payload["items"]
	if !ok {
		return payload, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: "items is not a list",
		}
	}

	if c := req.Query.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			return nil, &Error{
				Code: CodeInvalidQuery,
				Desc: "count must be a non-negative integer",
				Info: fmt.Sprintf("count=%q", c),
			}
		}
		if n < len(items) {
			items = items[:n]
		}
	}
	payload["items"] = items

	if len(items) > 0 {
		lastID, err := itemID(items[len(items)-1])
		if err != nil {
			return nil, err
		}
		firstID, err := itemID(items[0])
		if err != nil {
			return nil, err
		}

		// Pagination markers are recomputed from this page; stale ones from
		// the inbound query must not leak into the links.
		base := cloneQuery(req.Query)
		base.Del("max_id")
		base.Del("min_id")

		next := cloneQuery(base)
		next.Set("max_id", lastID)
		payload["next"] = pageURL(req, next)

		previous := cloneQuery(base)
		previous.Set("min_id", firstID)
		payload["previous"] = pageURL(req, previous)
	}

	return payload, nil
}

func itemID(item any) (string, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return "", &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: "item is not an object",
		}
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return "", &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: "item has no id",
		}
	}
	return id, nil
}

type pageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

type mediaConnection struct {
	Count    int64    `json:"count"`
	PageInfo pageInfo `json:"page_info"`
	Edges    []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
}

// reshapeGraphQL flattens a GraphQL edge/node payload into {posts, next?}.
// entityKey selects the entity under "data" ("user" or "hashtag") and
// connectionKey the media connection under it. A "next" link is added only
// when the upstream page_info reports more pages.
func reshapeGraphQL(req Request, body []byte, entityKey, connectionKey string) (any, error) {
	var payload struct {
		Data map[string]map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "could not parse upstream response",
			Info: err.Error(),
		}
	}

	entity, ok := payload.Data[entityKey]
	if !ok || entity == nil {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: fmt.Sprintf("missing data.%s", entityKey),
		}
	}
	rawConn, ok := entity[connectionKey]
	if !ok {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: fmt.Sprintf("missing data.%s.%s", entityKey, connectionKey),
		}
	}

	var conn mediaConnection
	if err := json.Unmarshal(rawConn, &conn); err != nil {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "unexpected upstream response shape",
			Info: err.Error(),
		}
	}

	posts := make([]json.RawMessage, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		posts = append(posts, edge.Node)
	}

	resp := map[string]any{"posts": posts}
	if conn.PageInfo.HasNextPage {
		q := cloneQuery(req.Query)
		q.Set("cursor", conn.PageInfo.EndCursor)
		resp["next"] = pageURL(req, q)
	}

	return resp, nil
}

// reshapePassthrough trusts the upstream document as-is, but it still has to
// be JSON.
func reshapePassthrough(body []byte) (any, error) {
	if !json.Valid(body) {
		return nil, &Error{
			Code: CodeFetchFailed,
			Desc: "could not parse upstream response",
			Info: "response is not valid JSON",
		}
	}
	return json.RawMessage(body), nil
}

// pageURL rebuilds a link to this proxy: same scheme, host, and path as the
// inbound request, with the given query string.
func pageURL(req Request, query url.Values) string {
	u := url.URL{
		Scheme:   req.Scheme,
		Host:     req.Host,
		Path:     req.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
