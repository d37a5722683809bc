package paymentmethod

import "strings"

type Method struct {
	Name string
}

func (m Method) Code() string {
	return m.Name
}

func (m Method) Label() string {
	if len(m.Name) == 0 {
		return ""
	}
	return strings.ToUpper(m.Name[:1]) + m.Name[1:]
}

type Enum struct {
	Cash   Method
	Pix    Method
	Credit Method
	Debit  Method
}

var Methods = Enum{
	Cash:   Method{Name: "cash"},
	Pix:    Method{Name: "pix"},
	Credit: Method{Name: "credit"},
	Debit:  Method{Name: "debit"},
}

var All = []Method{
	Methods.Cash,
	Methods.Pix,
	Methods.Credit,
	Methods.Debit,
}

// ByName returns the method for a given name, or nil if not found
func ByName(name string) *Method {
	for _, m := range All {
		if m.Name == name {
			return &m
		}
	}
	return nil
}
