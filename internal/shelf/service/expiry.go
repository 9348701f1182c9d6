package service

import (
	"context"
	"time"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/events"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/metrics"
)

// ExpiryScanner builds per-owner digests of soon and expired items
type ExpiryScanner struct {
	items     ItemStore
	shelf     *ShelfService
	clock     Clock
	publisher *events.ShelfEventPublisher
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewExpiryScanner creates a new expiry scanner. Thresholds are resolved
// through shelf so owners without settings get the defaults.
func NewExpiryScanner(
	items ItemStore,
	shelf *ShelfService,
	clock Clock,
	publisher *events.ShelfEventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *ExpiryScanner {
	return &ExpiryScanner{
		items:     items,
		shelf:     shelf,
		clock:     clock,
		publisher: publisher,
		metrics:   m,
		logger:    log,
	}
}

// ScanOwner classifies one owner's shelf and publishes a digest when
// anything is soon or expired. The digest is returned either way.
func (s *ExpiryScanner) ScanOwner(ctx context.Context, ownerID string) (*events.ExpiryDigestEvent, error) {
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	th, err := s.shelf.GetThresholds(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	digest := &events.ExpiryDigestEvent{
		OwnerID: ownerID,
		Date:    today.String(),
		Soon:    []events.DigestItem{},
		Expired: []events.DigestItem{},
	}

	for i := range items {
		level, ok := items[i].Classify(today, th)
		if !ok {
			continue
		}
		entry := digestItem(&items[i], today)
		switch level {
		case domain.WarnSoon:
			digest.Soon = append(digest.Soon, entry)
		case domain.WarnExpired:
			digest.Expired = append(digest.Expired, entry)
		}
	}

	if len(digest.Soon)+len(digest.Expired) > 0 {
		s.publisher.PublishExpiryDigest(ctx, *digest)
	}
	return digest, nil
}

// ScanAll scans every owner with dated items. A failing owner is logged and
// skipped; the number of published digests is returned.
func (s *ExpiryScanner) ScanAll(ctx context.Context) (int, error) {
	owners, err := s.items.ListOwners(ctx)
	if err != nil {
		return 0, err
	}

	counts := map[string]int{
		string(domain.WarnSoon):    0,
		string(domain.WarnExpired): 0,
	}
	published := 0
	for _, ownerID := range owners {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		digest, err := s.ScanOwner(ctx, ownerID)
		if err != nil {
			s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("expiry scan failed for owner")
			continue
		}
		counts[string(domain.WarnSoon)] += len(digest.Soon)
		counts[string(domain.WarnExpired)] += len(digest.Expired)
		if len(digest.Soon)+len(digest.Expired) > 0 {
			published++
		}
	}

	s.metrics.RecordExpiryScan(counts)
	return published, nil
}

func digestItem(item *domain.Item, today domain.Date) events.DigestItem {
	return events.DigestItem{
		ID:         item.ID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		ExpiryDate: item.ExpiryDate.String(),
		DaysLeft:   domain.DaysBetween(today, *item.ExpiryDate),
	}
}

// ExpiryScheduler runs expiry scans periodically across all owners
type ExpiryScheduler struct {
	scanner  *ExpiryScanner
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(scanner *ExpiryScanner, interval time.Duration, log *logger.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		scanner:  scanner,
		interval: interval,
		logger:   log,
	}
}

// Start starts the scheduler in a background goroutine.
// An initial scan runs immediately, then one per interval.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.logger.Info().Dur("interval", s.interval).Msg("expiry scheduler started")

		s.runScanCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("expiry scheduler stopped")
				return
			case <-ticker.C:
				s.runScanCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine and waits for it to exit
func (s *ExpiryScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *ExpiryScheduler) runScanCycle(ctx context.Context) {
	start := time.Now()

	published, err := s.scanner.ScanAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry scan cycle failed")
		return
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Int("digests", published).
		Msg("expiry scan cycle completed")
}
