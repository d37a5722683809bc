package tablestatus

import "strings"

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Free     Status
	Occupied Status
	Closing  Status
}

var Statuses = Enum{
	Free:     Status{Name: "free"},
	Occupied: Status{Name: "occupied"},
	Closing:  Status{Name: "closing"},
}

var All = []Status{
	Statuses.Free,
	Statuses.Occupied,
	Statuses.Closing,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
