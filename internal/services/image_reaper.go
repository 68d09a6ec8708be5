package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	applog "marketplace/internal/log"
	"marketplace/internal/repos"
	"marketplace/internal/storage"
)

const (
	reapBatch       = 50
	reapMaxAttempts = 10
)

// ImageReaper drains the image-deletion outbox into the object store.
type ImageReaper struct {
	Outbox   *repos.OutboxRepo
	Store    storage.ObjectStore
	Interval time.Duration

	kick chan struct{}
}

func NewImageReaper(outbox *repos.OutboxRepo, store storage.ObjectStore, interval time.Duration) *ImageReaper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ImageReaper{Outbox: outbox, Store: store, Interval: interval, kick: make(chan struct{}, 1)}
}

// DrainResult counts what one pass did.
type DrainResult struct {
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Drain walks the outbox once in id order. Every pending row is tried once
// per pass, so rows that keep failing never hide newer ones. Rows outside
// the store's allow-list are dropped as skipped.
func (r *ImageReaper) Drain(ctx context.Context) (DrainResult, error) {
	var res DrainResult
	var cursor int64
	for {
		batch, err := r.Outbox.Pending(ctx, cursor, reapBatch, reapMaxAttempts)
		if err != nil {
			return res, err
		}
		for _, d := range batch {
			cursor = d.ID
			deleted, err := r.Store.Delete(ctx, d.URL)
			if err != nil {
				res.Failed++
				applog.Base().WithFields(logrus.Fields{
					"url": d.URL, "reason": d.Reason, "attempts": d.Attempts + 1, "err": err.Error(),
				}).Warn("image.delete_failed")
				if ferr := r.Outbox.Failed(ctx, d.ID, err); ferr != nil {
					return res, ferr
				}
				continue
			}
			if deleted {
				res.Deleted++
			} else {
				res.Skipped++
			}
			if err := r.Outbox.Done(ctx, d.ID); err != nil {
				return res, err
			}
		}
		if len(batch) < reapBatch || ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
}

// Kick requests a drain without waiting for the next tick.
func (r *ImageReaper) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run drains on every tick and kick until ctx is cancelled.
func (r *ImageReaper) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	log := applog.Base().WithField("component", "image_reaper")
	log.WithField("interval", r.Interval.String()).Info("reaper.started")
	for {
		select {
		case <-ctx.Done():
			log.Info("reaper.stopped")
			return
		case <-t.C:
		case <-r.kick:
		}
		res, err := r.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			log.WithField("err", err.Error()).Error("reaper.drain_failed")
			continue
		}
		if res.Deleted+res.Skipped+res.Failed > 0 {
			log.WithFields(logrus.Fields{
				"deleted": res.Deleted, "skipped": res.Skipped, "failed": res.Failed,
			}).Info("reaper.drained")
		}
	}
}
