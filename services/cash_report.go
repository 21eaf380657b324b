package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"want-salon-backend/utils"
)

// CashReporter sends the day's cash register through the dispatcher on a
// cron schedule.
type CashReporter struct {
	stats      *StatsAggregator
	dispatcher *Dispatcher
	loc        *time.Location
	log        *zap.Logger
	cron       *cron.Cron
}

func NewCashReporter(stats *StatsAggregator, dispatcher *Dispatcher, loc *time.Location, log *zap.Logger) *CashReporter {
	if loc == nil {
		loc = time.Local
	}
	return &CashReporter{
		stats:      stats,
		dispatcher: dispatcher,
		loc:        loc,
		log:        log,
		cron:       cron.New(cron.WithLocation(loc)),
	}
}

func (r *CashReporter) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, func() {
		if err := r.SendReport(context.Background(), utils.Today(r.loc)); err != nil {
			r.log.Error("cash report failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("cash report scheduler started", zap.String("spec", spec), zap.String("timezone", r.loc.String()))
	return nil
}

// Stop waits for a running report to finish.
func (r *CashReporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *CashReporter) SendReport(ctx context.Context, date string) error {
	reg, err := r.stats.CashRegister(ctx, date)
	if err != nil {
		return err
	}
	delivered := r.dispatcher.Broadcast(ctx, FormatCashRegister(*reg))
	r.log.Info("cash report sent",
		zap.String("date", date),
		zap.Int("appointments", reg.AppointmentsCount),
		zap.Int("delivered", delivered),
	)
	return nil
}
