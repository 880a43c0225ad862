package jobs

import (
	"context"
	"log"
	"time"
)

// NotificationPurger deletes read notifications older than the cutoff in a
// single atomic statement.
type NotificationPurger interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob purges read notifications past the retention window. Unread
// notifications are kept regardless of age. A failed run deletes nothing;
// the next run simply sees a larger candidate set.
type RetentionJob struct {
	notifs    NotificationPurger
	retention time.Duration
	every     time.Duration
}

func NewRetentionJob(notifs NotificationPurger, retention, every time.Duration) *RetentionJob {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if every <= 0 {
		every = 24 * time.Hour
	}
	return &RetentionJob{
		notifs:    notifs,
		retention: retention,
		every:     every,
	}
}

// Run performs a single purge as of now.
func (j *RetentionJob) Run(ctx context.Context, now time.Time) error {
	startTime := time.Now()

	cutoff := now.Add(-j.retention)
	deleted, err := j.notifs.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("notification retention failed: %v", err)
		return err
	}

	log.Printf("notification retention completed: deleted %d read notifications older than %s in %v",
		deleted, cutoff.Format(time.RFC3339), time.Since(startTime))
	return nil
}

// Schedule runs the purge on a ticker until the returned channel is closed
// or ctx is done.
func (j *RetentionJob) Schedule(ctx context.Context) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(j.every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := j.Run(ctx, time.Now()); err != nil {
					log.Printf("scheduled retention error: %v", err)
				}
			case <-stopCh:
				log.Println("retention job stopped")
				return
			case <-ctx.Done():
				log.Println("retention job stopped (context done)")
				return
			}
		}
	}()

	log.Printf("retention job started with interval %v (window %v)", j.every, j.retention)
	return stopCh
}
