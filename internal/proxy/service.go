package proxy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/whizzzkid/instagram-proxy-api/internal/access"
	"github.com/whizzzkid/instagram-proxy-api/internal/instagram"
	"github.com/whizzzkid/instagram-proxy-api/internal/metrics"
)

// Service runs the request pipeline: referer check, upstream query
// construction, fetch, reshape. It holds no mutable state; every method is
// safe for concurrent use.
type Service struct {
	guard  *access.Guard
	client *instagram.Client
	limits Limits
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(guard *access.Guard, client *instagram.Client, limits Limits, logger *slog.Logger) *Service {
	return &Service{
		guard:  guard,
		client: client,
		limits: limits,
		logger: logger,
	}
}

// UserMedia serves the legacy per-user route: forward the inbound query to
// the legacy media endpoint and reshape the item list.
func (s *Service) UserMedia(ctx context.Context, req Request, username string) (any, error) {
	if err := s.checkReferer(req, "user", username); err != nil {
		return nil, err
	}
	return s.fetchUserMedia(ctx, req, username)
}

// GraphQL serves /graphql/query/ for either a resolved numeric user id or a
// tag name; exactly one of the two must be present in the inbound query.
func (s *Service) GraphQL(ctx context.Context, req Request) (any, error) {
	if err := s.checkReferer(req, "route", "graphql"); err != nil {
		return nil, err
	}

	switch {
	case req.Query.Get("user_id") != "":
		return s.fetchUserTimeline(ctx, req, req.Query.Get("user_id"))
	case req.Query.Get("tag") != "":
		return s.fetchTagMedia(ctx, req, req.Query.Get("tag"))
	default:
		return nil, &Error{
			Code: CodeInvalidQuery,
			Desc: "either user_id or tag is required",
		}
	}
}

// TagMedia serves a GraphQL hashtag-media page.
func (s *Service) TagMedia(ctx context.Context, req Request, tag string) (any, error) {
	if err := s.checkReferer(req, "tag", tag); err != nil {
		return nil, err
	}
	return s.fetchTagMedia(ctx, req, tag)
}

// Passthrough serves advanced requests by forwarding the inbound path and
// query to the upstream verbatim.
func (s *Service) Passthrough(ctx context.Context, req Request) (any, error) {
	if err := s.checkReferer(req, "path", req.Path); err != nil {
		return nil, err
	}

	q, err := passthroughQuery(req)
	if err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch passthrough: %w", err)
	}
	return reshapePassthrough(body)
}

func (s *Service) fetchUserMedia(ctx context.Context, req Request, username string) (any, error) {
	body, err := s.fetch(ctx, userMediaQuery(username, req.Query))
	if err != nil {
		return nil, fmt.Errorf("fetch user media: %w", err)
	}
	return reshapeLegacy(req, body)
}

func (s *Service) fetchUserTimeline(ctx context.Context, req Request, userID string) (any, error) {
	count := s.limits.clamp(req.Query.Get("count"))
	body, err := s.fetch(ctx, userTimelineQuery(userID, count, req.Query.Get("cursor")))
	if err != nil {
		return nil, fmt.Errorf("fetch user timeline: %w", err)
	}
	return reshapeGraphQL(req, body, "user", "edge_owner_to_timeline_media")
}

func (s *Service) fetchTagMedia(ctx context.Context, req Request, tag string) (any, error) {
	count := s.limits.clamp(req.Query.Get("count"))
	body, err := s.fetch(ctx, tagMediaQuery(tag, count, req.Query.Get("cursor")))
	if err != nil {
		return nil, fmt.Errorf("fetch tag media: %w", err)
	}
	return reshapeGraphQL(req, body, "hashtag", "edge_hashtag_to_media")
}

// checkReferer short-circuits the pipeline before any upstream call is made.
func (s *Service) checkReferer(req Request, targetKind, target string) error {
	decision, domain := s.guard.Check(req.Referer)
	if decision == access.Deny {
		s.logger.Warn("denying access",
			"referer", req.Referer,
			"domain", domain,
			targetKind, target,
		)
		metrics.RefererDenials.Inc()
		return &Error{Code: CodeRefererDenied, Desc: "referer is blacklisted"}
	}

	s.logger.Info("processing request",
		targetKind, target,
		"query", req.Query.Encode(),
		"referer", req.Referer,
	)
	return nil
}

func (s *Service) fetch(ctx context.Context, q instagram.Query) ([]byte, error) {
	body, err := s.client.Fetch(ctx, q)
	if err != nil {
		metrics.UpstreamFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.UpstreamFetches.WithLabelValues("ok").Inc()
	return body, nil
}
