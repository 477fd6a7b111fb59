package scheduler

import (
	"time"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// OrderExpiryScheduler sweeps orders stuck in pending past their TTL and
// cancels them through the regular state machine, so stock is credited
// back and subscribers hear about it.
type OrderExpiryScheduler struct {
	cron         *cron.Cron
	orderRepo    repository.OrderRepository
	orderService service.OrderService
	pendingTTL   time.Duration
	schedule     string
}

func NewOrderExpiryScheduler(
	orderRepo repository.OrderRepository,
	orderService service.OrderService,
	pendingTTL time.Duration,
	schedule string,
) *OrderExpiryScheduler {
	return &OrderExpiryScheduler{
		cron:         cron.New(),
		orderRepo:    orderRepo,
		orderService: orderService,
		pendingTTL:   pendingTTL,
		schedule:     schedule,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *OrderExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		logger.Error("Failed to add cron job for order expiry", err)
		return err
	}

	s.cron.Start()
	logger.Info("Order expiry scheduler started", map[string]interface{}{
		"schedule":    s.schedule,
		"pending_ttl": s.pendingTTL.String(),
	})

	return nil
}

// Stop stops the scheduler.
func (s *OrderExpiryScheduler) Stop() {
	logger.Info("Stopping order expiry scheduler...", nil)
	s.cron.Stop()
	logger.Info("Order expiry scheduler stopped", nil)
}

func (s *OrderExpiryScheduler) sweep() {
	cutoff := time.Now().Add(-s.pendingTTL)

	stale, err := s.orderRepo.FindStalePending(cutoff)
	if err != nil {
		logger.Error("Failed to list stale pending orders", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info("Expiring stale pending orders", map[string]interface{}{
		"count":  len(stale),
		"cutoff": cutoff,
	})

	cancelled := 0
	for _, order := range stale {
		// A concurrent transition turns into an InvalidTransitionError
		// here, which just means this order no longer needs expiring.
		if _, err := s.orderService.AdvanceStatus(order.ID, model.OrderStatusCancelled); err != nil {
			logger.Warn("Failed to expire pending order", map[string]interface{}{
				"order_id": order.ID,
				"error":    err.Error(),
			})
			continue
		}
		cancelled++
	}

	logger.Info("Stale pending order sweep completed", map[string]interface{}{
		"expired": cancelled,
		"skipped": len(stale) - cancelled,
	})
}
