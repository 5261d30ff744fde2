// Package jobs holds scheduled background work: the daily admin usage
// report.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/beitans8/telegram-ig-agent/internal/usage"
)

// reportWindow is how far back the usage summary reaches.
const reportWindow = 24 * time.Hour

// Sender delivers the formatted report to the admin chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Aggregator reads the usage ledger.
type Aggregator interface {
	Aggregate(since time.Time) ([]usage.ProviderUsage, error)
}

// UsageReport aggregates the last 24 hours of ledger rows and pushes the
// summary to the admin chat.
type UsageReport struct {
	Ledger      Aggregator
	Sender      Sender
	AdminChatID int64
	Log         *logrus.Logger
}

// Run executes the report once.
func (j *UsageReport) Run(ctx context.Context) error {
	since := time.Now().UTC().Add(-reportWindow)

	rows, err := j.Ledger.Aggregate(since)
	if err != nil {
		return err
	}

	text := usage.FormatReport(rows)
	if err := j.Sender.SendMessage(ctx, j.AdminChatID, text); err != nil {
		return err
	}

	j.Log.WithFields(logrus.Fields{
		"providers": len(rows),
		"chat_id":   j.AdminChatID,
	}).Info("usage report sent")

	return nil
}

// Schedule registers the report as a daily 09:00 UTC job on a new scheduler
// and starts it. Callers shut it down via the returned scheduler.
func Schedule(job *UsageReport) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(9, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := job.Run(ctx); err != nil {
				job.Log.WithError(err).Error("usage report failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
