package sector

import "strings"

type Sector struct {
	Name string
}

func (s Sector) Code() string {
	return s.Name
}

func (s Sector) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

type Enum struct {
	Kitchen Sector
	Bar     Sector
}

var Sectors = Enum{
	Kitchen: Sector{Name: "kitchen"},
	Bar:     Sector{Name: "bar"},
}

var All = []Sector{
	Sectors.Kitchen,
	Sectors.Bar,
}

// ByName returns the sector for a given name, or nil if not found
func ByName(name string) *Sector {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
