package comanda

import (
	"errors"
	"testing"

	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

func TestTableOpen(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{name: "freeTable", status: tablestatus.Statuses.Free.Code()},
		{name: "occupiedTable", status: tablestatus.Statuses.Occupied.Code(), wantErr: ErrAlreadyOccupied},
		{name: "closingTable", status: tablestatus.Statuses.Closing.Code(), wantErr: ErrAlreadyOccupied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(1)
			table.Status = tt.status

			err := table.Open()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
				}
				if table.Status != tt.status {
					t.Errorf("status changed on failed transition: %s", table.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !table.IsOccupied() {
				t.Errorf("status = %s, want occupied", table.Status)
			}
		})
	}
}

func TestTableRequestBill(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{name: "occupiedTable", status: tablestatus.Statuses.Occupied.Code()},
		{name: "freeTable", status: tablestatus.Statuses.Free.Code(), wantErr: ErrInvalidState},
		{name: "closingTable", status: tablestatus.Statuses.Closing.Code(), wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(2)
			table.Status = tt.status

			err := table.RequestBill()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RequestBill() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequestBill() error = %v", err)
			}
			if !table.IsClosing() {
				t.Errorf("status = %s, want closing", table.Status)
			}
		})
	}
}

func TestTableReopen(t *testing.T) {
	table := NewTable(3)
	table.Status = tablestatus.Statuses.Closing.Code()

	if err := table.Reopen(); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if !table.IsOccupied() {
		t.Errorf("status = %s, want occupied", table.Status)
	}

	table.Status = tablestatus.Statuses.Free.Code()
	if err := table.Reopen(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Reopen() on free table error = %v, want %v", err, ErrInvalidState)
	}
}

func TestTableLifecycleRoundTrip(t *testing.T) {
	table := NewTable(4)

	if err := table.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := table.RequestBill(); err != nil {
		t.Fatalf("RequestBill() error = %v", err)
	}
	if err := table.Reopen(); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if err := table.RequestBill(); err != nil {
		t.Fatalf("second RequestBill() error = %v", err)
	}
	if err := table.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !table.IsFree() {
		t.Errorf("status = %s, want free", table.Status)
	}
}
