// Package service orchestrates verification recomputations.
//
// The engine is pure; this service owns the I/O around it: loading the
// dog's snapshot, running fraud checks, persisting the superseding
// bundle and tier, and emitting audit events. Recomputations for the
// same dog are serialized so two concurrent triggers cannot interleave
// a bundle from one computation with a tier from another.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	dogmodels "pawport/internal/dog/models"
	dogstore "pawport/internal/dog/store"
	"pawport/internal/fraud"
	recstore "pawport/internal/record/store"
	"pawport/internal/verification/engine"
	"pawport/internal/verification/metrics"
	"pawport/internal/verification/models"
	verstore "pawport/internal/verification/store"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/platform/audit"
	"pawport/pkg/platform/sentinel"
	pstrings "pawport/pkg/platform/strings"
	"pawport/pkg/requestcontext"
)

const recomputeAllConcurrency = 8

// Invalidator drops a dog's cached public summary. The tiering step
// calls it after every level change so businesses never see a stale
// tier for a full cache TTL.
type Invalidator interface {
	Invalidate(ctx context.Context, dogID id.DogID)
}

// Service recomputes scores and tiers for dogs.
type Service struct {
	engine     *engine.Engine
	dogs       dogstore.DogStore
	records    recstore.RecordStore
	docs       recstore.DocumentStore
	scores     verstore.ScoreStore
	publisher  audit.Publisher
	invalidate Invalidator
	log        *slog.Logger
	tracer     trace.Tracer

	group singleflight.Group
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

// WithCacheInvalidator sets the summary cache invalidation hook.
func WithCacheInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.invalidate = inv }
}

func New(
	eng *engine.Engine,
	dogs dogstore.DogStore,
	records recstore.RecordStore,
	docs recstore.DocumentStore,
	scores verstore.ScoreStore,
	opts ...Option,
) *Service {
	s := &Service{
		engine:  eng,
		dogs:    dogs,
		records: records,
		docs:    docs,
		scores:  scores,
		log:     slog.Default(),
		tracer:  otel.Tracer("pawport/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recompute rebuilds the dog's score bundle and verification tier from
// the current record set. Concurrent calls for the same dog collapse
// into one computation. A failure leaves the previously persisted
// bundle and tier untouched.
func (s *Service) Recompute(ctx context.Context, dogID id.DogID) error {
	_, err, _ := s.group.Do(dogID.String(), func() (any, error) {
		return nil, s.recompute(ctx, dogID)
	})
	return err
}

func (s *Service) recompute(ctx context.Context, dogID id.DogID) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.recompute",
		trace.WithAttributes(attribute.String("dog.id", dogID.String())))
	defer span.End()

	outcome := "error"
	defer func() { metrics.ObserveRecompute(start, outcome) }()

	dog, err := s.dogs.FindByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			outcome = "not_found"
			return dErrors.New(dErrors.CodeNotFound, "dog not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load dog")
	}
	records, err := s.records.ListByDog(ctx, dogID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load records")
	}

	fraudFlags, err := s.collectFraudFlags(ctx, dog)
	if err != nil {
		return err
	}
	metrics.FraudFlags(len(fraudFlags))

	now := requestcontext.Now(ctx)
	bundle := s.engine.ComputeInternalScores(engine.Input{
		Dog:        dog,
		Records:    records,
		FraudFlags: fraudFlags,
		Now:        now,
	})

	// Bundle first, tier second: a crash between the two leaves the dog
	// on its previous public tier with fresh internal scores, which is
	// the safe direction.
	if err := s.scores.Save(ctx, &bundle); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save score bundle")
	}
	if bundle.RequiresHumanReview {
		metrics.ReviewFlagged()
	}

	level := s.engine.DetermineVerificationLevel(dog, records, bundle)
	metrics.LevelAssigned(level.String())

	if level != dog.VerificationLevel {
		if err := s.dogs.UpdateVerificationLevel(ctx, dogID, level); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update verification level")
		}
		s.emit(ctx, audit.Event{
			Type:      audit.EventVerificationLevelChanged,
			Timestamp: now,
			ActorType: "system",
			DogID:     dogID,
			RequestID: requestcontext.RequestID(ctx),
			Metadata: map[string]string{
				"from": dog.VerificationLevel.String(),
				"to":   level.String(),
			},
		})
		s.log.InfoContext(ctx, "verification level changed",
			"dog_id", dogID.String(), "from", dog.VerificationLevel.String(), "to", level.String())
		if s.invalidate != nil {
			s.invalidate.Invalidate(ctx, dogID)
		}
	}

	s.emit(ctx, audit.Event{
		Type:      audit.EventScoresComputed,
		Timestamp: now,
		ActorType: "system",
		DogID:     dogID,
		RequestID: requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"requires_review": strconv.FormatBool(bundle.RequiresHumanReview),
			"level":           level.String(),
		},
	})

	outcome = "ok"
	return nil
}

// collectFraudFlags runs the document and cross-dog checks. Both flag
// lists land in the bundle verbatim; the combined risk score is logged
// for operators but never persisted on the dog.
func (s *Service) collectFraudFlags(ctx context.Context, dog *dogmodels.Dog) ([]string, error) {
	docs, err := s.docs.ListByDog(ctx, dog.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load documents")
	}
	allDocs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load document corpus")
	}
	allDogs, err := s.dogs.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load dogs")
	}

	var docFlags []string
	for _, doc := range docs {
		docFlags = append(docFlags, fraud.CheckDocumentFraud(doc, allDocs)...)
	}
	consistencyFlags := fraud.CheckDogConsistency(dog, allDogs)

	if risk := fraud.ComputeFraudRiskScore(docFlags, consistencyFlags); risk > 0 {
		s.log.WarnContext(ctx, "fraud risk on recompute",
			"dog_id", dog.ID.String(), "risk_score", risk,
			"fraud_flags", len(docFlags), "inconsistency_flags", len(consistencyFlags))
	}

	// The same condition found through several documents reads as one flag.
	return pstrings.DedupeAndTrim(append(docFlags, consistencyFlags...)), nil
}

// RecomputeAll recomputes every dog, bounded-concurrent. Individual
// failures are logged and do not stop the sweep; the first error is
// returned after all dogs were attempted.
func (s *Service) RecomputeAll(ctx context.Context) error {
	dogs, err := s.dogs.ListAll(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load dogs")
	}

	g := errgroup.Group{}
	g.SetLimit(recomputeAllConcurrency)
	for _, dog := range dogs {
		g.Go(func() error {
			if err := s.Recompute(ctx, dog.ID); err != nil {
				s.log.ErrorContext(ctx, "recompute failed", "dog_id", dog.ID.String(), "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// BundleForDog returns the dog's current internal score bundle.
// Admin-audience only; handlers and businesses have no route to this.
func (s *Service) BundleForDog(ctx context.Context, dogID id.DogID) (*models.InternalScoreBundle, error) {
	bundle, err := s.scores.FindByDog(ctx, dogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no score bundle for dog")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load score bundle")
	}
	return bundle, nil
}

// ReviewQueue lists bundles currently flagged for human review, newest
// first.
func (s *Service) ReviewQueue(ctx context.Context) ([]*models.InternalScoreBundle, error) {
	bundles, err := s.scores.ListRequiringReview(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list review queue")
	}
	return bundles, nil
}

// OverrideLevel sets a dog's verification level by admin decision. The
// override is audited with the acting admin; the next recomputation may
// move the level again.
func (s *Service) OverrideLevel(ctx context.Context, dogID id.DogID, level dogmodels.VerificationLevel, adminActor string) error {
	dog, err := s.dogs.FindByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "dog not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load dog")
	}
	if err := s.dogs.UpdateVerificationLevel(ctx, dogID, level); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update verification level")
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, dogID)
	}
	s.emit(ctx, audit.Event{
		Type:      audit.EventVerificationOverridden,
		Timestamp: requestcontext.Now(ctx),
		ActorType: "admin",
		ActorID:   adminActor,
		DogID:     dogID,
		RequestID: requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"from": dog.VerificationLevel.String(),
			"to":   level.String(),
		},
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.log.WarnContext(ctx, "audit emit failed", "event", string(event.Type), "error", err)
	}
}
