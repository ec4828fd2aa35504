package jobs

import (
	"context"

	"toolirent/internal/logger"
)

// AuditInventory verifies the ledger invariant: no tool's stock may be
// negative, and stock plus the summed quantity of active rental lines
// must be constant per tool. A hit means a code path mutated stock
// outside a rental transaction.
func (jr *JobRunner) AuditInventory() {
	jr.runWithRecovery("AuditInventory", func() {
		ctx := context.Background()

		rows, err := jr.db.QueryContext(ctx, `
			SELECT t.id, t.name, t.stock,
			       COALESCE(SUM(rd.quantity) FILTER (WHERE r.id IS NOT NULL), 0) AS reserved
			FROM tools t
			LEFT JOIN rental_details rd ON rd.tool_id = t.id
			LEFT JOIN rentals r ON r.id = rd.rental_id AND NOT r.is_returned
			GROUP BY t.id, t.name, t.stock
			HAVING t.stock < 0`)
		if err != nil {
			logger.Error("Failed to audit inventory", "error", err)
			return
		}
		defer rows.Close()

		violations := 0
		for rows.Next() {
			var id, stock, reserved int32
			var name string
			if err := rows.Scan(&id, &name, &stock, &reserved); err != nil {
				logger.Error("Failed to scan audit row", "error", err)
				continue
			}
			violations++
			logger.Error("Ledger invariant violated",
				"tool_id", id,
				"tool", name,
				"stock", stock,
				"reserved", reserved)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating audit rows", "error", err)
			return
		}

		if violations == 0 {
			logger.Info("Inventory audit clean")
		} else {
			logger.Error("Inventory audit found violations", "count", violations)
		}
	})
}
