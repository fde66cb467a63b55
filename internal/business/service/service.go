// Package service implements the business-facing scan.
//
// A scan returns only the ADA-safe public summary. This package must
// never import the verification, fraud, or breed packages; the
// compile-time import graph is the compliance boundary.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mssola/useragent"
	"github.com/redis/go-redis/v9"

	dogstore "pawport/internal/dog/store"
	"pawport/internal/publicstatus"
	recstore "pawport/internal/record/store"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/platform/audit"
	"pawport/pkg/platform/sentinel"
	"pawport/pkg/requestcontext"
)

const (
	summaryCacheTTL    = time.Minute
	summaryCachePrefix = "pawport:scan:"
)

// Service serves public summaries to scanning businesses.
type Service struct {
	dogs      dogstore.DogStore
	handlers  dogstore.HandlerStore
	records   recstore.RecordStore
	cache     *redis.Client
	publisher audit.Publisher
	log       *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithAuditPublisher sets the audit event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCache enables the Redis read-through cache for summaries.
func WithCache(client *redis.Client) Option {
	return func(s *Service) { s.cache = client }
}

func New(dogs dogstore.DogStore, handlers dogstore.HandlerStore, records recstore.RecordStore, opts ...Option) *Service {
	s := &Service{
		dogs:     dogs,
		handlers: handlers,
		records:  records,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the public summary for a dog. Every scan is audited,
// cache hit or not; the cache only short-circuits the projection.
func (s *Service) Scan(ctx context.Context, dogID id.DogID) (publicstatus.Summary, error) {
	if summary, ok := s.cachedSummary(ctx, dogID); ok {
		s.auditScan(ctx, dogID, summary.VerificationLevel, true)
		return summary, nil
	}

	dog, err := s.dogs.FindByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return publicstatus.Summary{}, dErrors.New(dErrors.CodeNotFound, "dog not found")
		}
		return publicstatus.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "load dog")
	}
	handler, err := s.handlers.FindByID(ctx, dog.HandlerID)
	if err != nil {
		return publicstatus.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "load handler")
	}
	records, err := s.records.ListByDog(ctx, dogID)
	if err != nil {
		return publicstatus.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "load records")
	}

	summary := publicstatus.Project(dog, handler, records, requestcontext.Now(ctx))
	s.storeSummary(ctx, dogID, summary)
	s.auditScan(ctx, dogID, summary.VerificationLevel, false)
	return summary, nil
}

func (s *Service) cachedSummary(ctx context.Context, dogID id.DogID) (publicstatus.Summary, bool) {
	if s.cache == nil {
		return publicstatus.Summary{}, false
	}
	raw, err := s.cache.Get(ctx, summaryCachePrefix+dogID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return publicstatus.Summary{}, false
	}
	if err != nil {
		s.log.WarnContext(ctx, "summary cache read failed", "dog_id", dogID.String(), "error", err)
		return publicstatus.Summary{}, false
	}
	var summary publicstatus.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		s.log.WarnContext(ctx, "summary cache decode failed", "dog_id", dogID.String(), "error", err)
		return publicstatus.Summary{}, false
	}
	return summary, true
}

func (s *Service) storeSummary(ctx context.Context, dogID id.DogID, summary publicstatus.Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryCachePrefix+dogID.String(), raw, summaryCacheTTL).Err(); err != nil {
		s.log.WarnContext(ctx, "summary cache write failed", "dog_id", dogID.String(), "error", err)
	}
}

// Invalidate drops a dog's cached summary. Called after recomputes and
// overrides so businesses do not see a stale tier for a full TTL.
func (s *Service) Invalidate(ctx context.Context, dogID id.DogID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCachePrefix+dogID.String()).Err(); err != nil {
		s.log.WarnContext(ctx, "summary cache invalidate failed", "dog_id", dogID.String(), "error", err)
	}
}

// auditScan records the scan with the scanner's device parsed from the
// request's User-Agent. Metadata is display-level only.
func (s *Service) auditScan(ctx context.Context, dogID id.DogID, level string, cached bool) {
	if s.publisher == nil {
		return
	}
	metadata := map[string]string{
		"verification_level": level,
	}
	if cached {
		metadata["cached"] = "true"
	}
	if raw := requestcontext.UserAgent(ctx); raw != "" {
		ua := useragent.New(raw)
		browser, _ := ua.Browser()
		metadata["scanner_platform"] = ua.Platform()
		metadata["scanner_browser"] = browser
		if ua.Mobile() {
			metadata["scanner_mobile"] = "true"
		}
	}
	event := audit.Event{
		Type:      audit.EventBusinessScan,
		Timestamp: requestcontext.Now(ctx),
		ActorType: "business",
		DogID:     dogID,
		RequestID: requestcontext.RequestID(ctx),
		Metadata:  metadata,
	}
	if orgID := requestcontext.OrgID(ctx); !orgID.IsNil() {
		event.ActorID = orgID.String()
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.log.WarnContext(ctx, "audit emit failed", "event", string(event.Type), "error", err)
	}
}
