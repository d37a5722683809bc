package kitchen

import "time"

// AlertLevel classifies how long a production order has been waiting.
type AlertLevel string

const (
	AlertOK   AlertLevel = "ok"
	AlertWarn AlertLevel = "warn"
	AlertLate AlertLevel = "late"
)

// Default thresholds, overridable through kitchen.alert.warn and
// kitchen.alert.late config keys.
const (
	DefaultWarnAfter = 10 * time.Minute
	DefaultLateAfter = 20 * time.Minute
)

// AlertFor computes the elapsed-time alert for an order created at createdAt.
// Alerts are derived at read time, never persisted.
func AlertFor(createdAt, now time.Time, warnAfter, lateAfter time.Duration) AlertLevel {
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed >= lateAfter:
		return AlertLate
	case elapsed >= warnAfter:
		return AlertWarn
	default:
		return AlertOK
	}
}

// BoardEntry is the read model served to kitchen/bar displays. It augments the
// persisted order with the elapsed time and alert level at the query instant.
type BoardEntry struct {
	*ProductionOrder
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Alert          AlertLevel `json:"alert"`
}

// NewBoardEntry builds the display entry for an order at the given instant.
func NewBoardEntry(order *ProductionOrder, now time.Time, warnAfter, lateAfter time.Duration) BoardEntry {
	return BoardEntry{
		ProductionOrder: order,
		ElapsedSeconds:  int(now.Sub(order.CreatedAt).Seconds()),
		Alert:           AlertFor(order.CreatedAt, now, warnAfter, lateAfter),
	}
}
