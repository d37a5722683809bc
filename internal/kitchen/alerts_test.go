package kitchen

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/sector"
)

func TestAlertFor(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		elapsed time.Duration
		want    AlertLevel
	}{
		{name: "fresh", elapsed: 0, want: AlertOK},
		{name: "justUnderWarn", elapsed: DefaultWarnAfter - time.Second, want: AlertOK},
		{name: "atWarn", elapsed: DefaultWarnAfter, want: AlertWarn},
		{name: "betweenWarnAndLate", elapsed: 15 * time.Minute, want: AlertWarn},
		{name: "atLate", elapsed: DefaultLateAfter, want: AlertLate},
		{name: "wellPastLate", elapsed: time.Hour, want: AlertLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createdAt := now.Add(-tt.elapsed)
			if got := AlertFor(createdAt, now, DefaultWarnAfter, DefaultLateAfter); got != tt.want {
				t.Errorf("AlertFor(elapsed=%v) = %s, want %s", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestAlertForCustomThresholds(t *testing.T) {
	now := time.Now()
	createdAt := now.Add(-3 * time.Minute)

	if got := AlertFor(createdAt, now, 2*time.Minute, 5*time.Minute); got != AlertWarn {
		t.Errorf("AlertFor() = %s, want %s", got, AlertWarn)
	}
	if got := AlertFor(createdAt, now, 10*time.Minute, 20*time.Minute); got != AlertOK {
		t.Errorf("AlertFor() = %s, want %s", got, AlertOK)
	}
}

func TestNewBoardEntry(t *testing.T) {
	po := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 1, sector.Sectors.Kitchen.Code(), sampleLines(1))
	now := po.CreatedAt.Add(12 * time.Minute)

	entry := NewBoardEntry(po, now, DefaultWarnAfter, DefaultLateAfter)
	if entry.ElapsedSeconds != 720 {
		t.Errorf("ElapsedSeconds = %d, want 720", entry.ElapsedSeconds)
	}
	if entry.Alert != AlertWarn {
		t.Errorf("Alert = %s, want %s", entry.Alert, AlertWarn)
	}
	if entry.ProductionOrder != po {
		t.Error("entry does not wrap the order")
	}
}
