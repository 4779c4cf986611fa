package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/stintapp/stint/internal/clock"
	"github.com/stintapp/stint/internal/metrics"
	"github.com/stintapp/stint/internal/notify"
	"github.com/stintapp/stint/internal/snapshot"
	"github.com/stintapp/stint/internal/timer"
)

const defaultSnapshotInterval = 30 * time.Second

// startCollectors launches the background consumers of engine state: the
// metrics refresher, driven by the notification bus like any other
// subscriber, and the periodic snapshot persister.
func startCollectors(ctx context.Context, engine *timer.Engine, bus *notify.Bus, snaps *snapshot.Store, clk clock.Clock) {
	unsubscribe := bus.Subscribe(func() {
		updateTimerMetrics(engine)
		metrics.UpdateBusSubscribers(bus.SubscriberCount())
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	if snaps != nil {
		go runSnapshotPersister(ctx, engine, snaps, clk)
	}
}

func runSnapshotPersister(ctx context.Context, engine *timer.Engine, snaps *snapshot.Store, clk clock.Clock) {
	ticker := time.NewTicker(snapshotInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := snaps.Save(engine.Snapshot(), clk.Now()); err != nil {
				metrics.RecordSnapshotError()
				log.Printf("failed to persist snapshot: %v", err)
				continue
			}
			metrics.RecordSnapshotPersisted()
		}
	}
}

func updateTimerMetrics(engine *timer.Engine) {
	counts := make(map[string]int)
	for _, s := range engine.Snapshot() {
		counts[string(s.Status)]++
	}

	metrics.UpdateTimerGauges(counts)
}

func snapshotInterval() time.Duration {
	raw := os.Getenv("SNAPSHOT_INTERVAL")
	if raw == "" {
		return defaultSnapshotInterval
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("invalid SNAPSHOT_INTERVAL %q, using default", raw)
		return defaultSnapshotInterval
	}

	return time.Duration(seconds) * time.Second
}
