package jobs

import (
	"context"
	"time"

	"toolirent/internal/logger"
)

// ReportOverdueRentals logs every active rental whose end date has
// passed. Report-only: notification delivery is out of scope and stock
// stays reserved until the rental is actually returned.
func (jr *JobRunner) ReportOverdueRentals() {
	jr.runWithRecovery("ReportOverdueRentals", func() {
		ctx := context.Background()

		overdue, err := jr.store.ListOverdueRentals(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		logger.Info("Overdue rentals", "count", len(overdue))
		for _, rental := range overdue {
			logger.Debug("Rental overdue",
				"rental_id", rental.ID,
				"customer_id", rental.CustomerID,
				"end_date", rental.EndDate.Format("2006-01-02"))
		}
	})
}
