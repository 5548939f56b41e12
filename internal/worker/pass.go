// Package worker contains the campaign send pass and the delivery-log
// ingest loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/swiftbulk/campaign-gateway/internal/metrics"
	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/provider"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	"github.com/swiftbulk/campaign-gateway/internal/template"
	"github.com/swiftbulk/campaign-gateway/internal/util"
)

// DeliveryPublisher emits one event per dispatch outcome. Optional; a nil
// publisher disables the analytics pipeline.
type DeliveryPublisher interface {
	Publish(ctx context.Context, ev model.DeliveryEvent) error
}

// Locker guards a campaign against concurrent passes. Optional; a nil
// locker preserves the plain last-write-wins behavior.
type Locker interface {
	// TryLock returns an unlock func and whether the lock was acquired.
	TryLock(ctx context.Context, campaignID int64) (func(), bool)
}

// SendWorker advances every eligible campaign through its recipients
// once, then returns. External scheduling (cron, supervisor) re-invokes
// it; it is not a daemon loop.
//
// Processing is strictly sequential: one campaign at a time, one
// recipient at a time, in stored order. That is what makes the rate
// limit and the persist-after-every-mutation invariant hold without
// extra coordination.
type SendWorker struct {
	Campaigns  repository.CampaignsRepository
	Recipients repository.RecipientsRepository
	Provider   provider.API
	Events     DeliveryPublisher
	Locker     Locker

	RatePerSec          int
	MaxAttempts         int
	PerMessageReference bool

	Log *zap.Logger
}

func (w *SendWorker) logger() *zap.Logger {
	if w.Log != nil {
		return w.Log
	}
	return zap.NewNop()
}

func (w *SendWorker) maxAttempts() int {
	if w.MaxAttempts > 0 {
		return w.MaxAttempts
	}
	return 2
}

func (w *SendWorker) limiter() *rate.Limiter {
	if w.RatePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(w.RatePerSec), 1)
}

// Run executes one pass. A failing campaign never aborts the pass;
// errors are recorded on the campaign or recipient they belong to.
func (w *SendWorker) Run(ctx context.Context) error {
	campaigns, err := w.Campaigns.List(ctx)
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}

	lim := w.limiter()
	for _, c := range campaigns {
		if !c.Status.Eligible() {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if w.Locker != nil {
			unlock, ok := w.Locker.TryLock(ctx, c.ID)
			if !ok {
				w.logger().Info("campaign locked by another worker, skipping",
					zap.Int64("campaign_id", c.ID))
				continue
			}
			w.processCampaign(ctx, c, lim)
			unlock()
			continue
		}

		w.processCampaign(ctx, c, lim)
	}

	return nil
}

func (w *SendWorker) processCampaign(ctx context.Context, c model.Campaign, lim *rate.Limiter) {
	log := w.logger().With(zap.Int64("campaign_id", c.ID))

	accountKey := w.Provider.AccountKeyFor(c.Country)
	if accountKey == "" {
		log.Error("no provider account key for country, failing campaign",
			zap.String("country", c.Country.String()))
		w.setStatus(ctx, c.ID, model.CampaignFailed, nil)
		return
	}

	if strings.TrimSpace(c.MessageTemplate) == "" {
		log.Error("empty message template, failing campaign")
		w.setStatus(ctx, c.ID, model.CampaignFailed, nil)
		return
	}

	// Persist running up front so a concurrent viewer sees progress even
	// if this process dies mid-pass.
	w.setStatus(ctx, c.ID, model.CampaignRunning, nil)

	recipients, err := w.Recipients.GetByCampaign(ctx, c.ID)
	if err != nil {
		log.Error("load recipients failed", zap.Error(err))
		return
	}
	invalid := c.Counts.Invalid

	senderID := ""
	if c.SenderID != nil {
		senderID = *c.SenderID
	}

	for i := range recipients {
		// Stop is cooperative and polled at recipient granularity only.
		fresh, err := w.Campaigns.GetByID(ctx, c.ID)
		if err != nil {
			log.Error("status re-read failed", zap.Error(err))
		} else if fresh == nil {
			log.Warn("campaign vanished mid-pass")
			return
		} else if fresh.Status == model.CampaignStopped {
			w.handleStop(ctx, c, accountKey, recipients, invalid, log)
			return
		}

		rec := &recipients[i]
		if !rec.Dispatchable(w.maxAttempts()) {
			continue
		}

		rendered := template.Render(c.MessageTemplate, template.Values{
			CustomerName: rec.CustomerName,
			ReceiverName: rec.ReceiverName,
			Phone:        rec.Phone,
		})
		rec.RenderedMessage = rendered

		if len(rendered) > template.MaxMessageLen {
			// Content defect, not a transient fault: terminal for this
			// recipient, no attempt charged, never reaches the network.
			w.markOversize(rec)
			w.persist(ctx, c.ID, recipients, log)
			w.publish(ctx, c, *rec, log)
			metrics.DispatchTotal.WithLabelValues("oversize", c.Country.String()).Inc()
			continue
		}

		reference := c.Reference
		if w.PerMessageReference {
			reference = util.NewMessageReference()
		}

		if err := lim.Wait(ctx); err != nil {
			log.Warn("rate limiter interrupted", zap.Error(err))
			return
		}

		res, sendErr := w.Provider.SendBulk(ctx, accountKey, []string{rec.Phone}, rendered, reference, senderID)
		if errors.Is(sendErr, provider.ErrCircuitOpen) {
			// Local fast-fail, not a dispatch: nothing reached the
			// provider, so no attempt is charged. The campaign stays
			// running and the next pass retries once the window closes.
			log.Warn("provider circuit open, ending pass for this campaign")
			return
		}

		// Attempt charged whether the call succeeded or not.
		rec.Attempts++
		w.applyOutcome(rec, res, sendErr, c.Country)

		w.persist(ctx, c.ID, recipients, log)
		w.publish(ctx, c, *rec, log)
	}

	counts := model.ComputeCounts(recipients, invalid)
	final := model.CampaignRunning // more retries on a future pass
	if counts.Pending == 0 {
		final = model.CampaignCompleted
	}
	w.setStatus(ctx, c.ID, final, &counts)
	log.Info("campaign pass finished",
		zap.String("status", final.String()),
		zap.Int("sent", counts.Sent),
		zap.Int("failed", counts.Failed),
		zap.Int("pending", counts.Pending))
}

// handleStop fires the best-effort provider Stop for the campaign
// reference and finalizes the stopped status with counts reflecting the
// recipients processed so far. Remaining recipients are left untouched.
func (w *SendWorker) handleStop(ctx context.Context, c model.Campaign, accountKey string, recipients []model.Recipient, invalid int, log *zap.Logger) {
	if res, err := w.Provider.Stop(ctx, accountKey, c.Reference); err != nil {
		log.Warn("provider stop call failed", zap.Error(err))
	} else {
		log.Info("provider stop call issued",
			zap.String("reference", c.Reference),
			zap.Int("http_code", res.HTTPCode))
	}

	counts := model.ComputeCounts(recipients, invalid)
	w.setStatus(ctx, c.ID, model.CampaignStopped, &counts)
	log.Info("campaign stopped mid-pass",
		zap.Int("sent", counts.Sent),
		zap.Int("pending", counts.Pending))
}

func (w *SendWorker) markOversize(rec *model.Recipient) {
	msg := fmt.Sprintf("rendered message exceeds %d character limit", template.MaxMessageLen)
	status := "error"
	rec.Status = model.RecipientFailed
	rec.ProviderStatus = &status
	rec.LastError = &msg
}

func (w *SendWorker) applyOutcome(rec *model.Recipient, res provider.Result, sendErr error, country model.Country) {
	code := res.HTTPCode
	rec.HTTPCode = &code
	if res.Body != "" {
		body := res.Body
		rec.ProviderResponse = &body
	}

	if sendErr == nil && res.OK() {
		status := "sent"
		now := time.Now().UTC()
		rec.Status = model.RecipientSent
		rec.ProviderStatus = &status
		rec.LastError = nil
		rec.SentAt = &now
		metrics.DispatchTotal.WithLabelValues("sent", country.String()).Inc()
		return
	}

	errText := res.Body
	if sendErr != nil {
		errText = sendErr.Error()
	}
	if errText == "" {
		errText = "send failed"
	}

	status := "error"
	rec.ProviderStatus = &status
	rec.LastError = &errText

	if rec.Attempts >= w.maxAttempts() {
		rec.Status = model.RecipientFailed
		metrics.DispatchTotal.WithLabelValues("failed", country.String()).Inc()
	} else {
		rec.Status = model.RecipientPending // eligible for a future pass
		metrics.DispatchTotal.WithLabelValues("retry", country.String()).Inc()
	}
}

// persist writes the whole recipient list after every single mutation so
// a crash mid-campaign loses at most one in-flight attempt.
func (w *SendWorker) persist(ctx context.Context, campaignID int64, recipients []model.Recipient, log *zap.Logger) {
	if err := w.Recipients.SaveAll(ctx, nil, campaignID, recipients); err != nil {
		log.Error("persist recipients failed", zap.Error(err))
	}
}

func (w *SendWorker) publish(ctx context.Context, c model.Campaign, rec model.Recipient, log *zap.Logger) {
	if w.Events == nil {
		return
	}
	code := 0
	if rec.HTTPCode != nil {
		code = *rec.HTTPCode
	}
	errText := ""
	if rec.LastError != nil {
		errText = *rec.LastError
	}
	ev := model.DeliveryEvent{
		CampaignID: c.ID,
		Position:   rec.Position,
		Phone:      rec.Phone,
		Country:    c.Country,
		Status:     rec.Status,
		Attempts:   rec.Attempts,
		HTTPCode:   code,
		Error:      errText,
		OccurredAt: time.Now().UTC(),
	}
	if err := w.Events.Publish(ctx, ev); err != nil {
		log.Warn("delivery event publish failed", zap.Error(err))
	}
}

func (w *SendWorker) setStatus(ctx context.Context, id int64, status model.CampaignStatus, counts *model.Counts) {
	if err := w.Campaigns.SetStatus(ctx, nil, id, status, counts); err != nil {
		w.logger().Error("set campaign status failed",
			zap.Int64("campaign_id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return
	}
	metrics.CampaignTransitions.WithLabelValues(status.String()).Inc()
}
