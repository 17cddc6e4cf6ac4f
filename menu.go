package dbstatic

// Choice is one menu entry: the symbolic name and the value users see.
type Choice struct {
	Name  string
	Value string
}

type Menu struct {
	Name    string
	Choices []Choice
}

func NewMenu(name string, choices ...Choice) *Menu {
	return &Menu{Name: name, Choices: choices}
}

func (m *Menu) Values() []string {
	out := make([]string, len(m.Choices))
	for i, c := range m.Choices {
		out[i] = c.Value
	}
	return out
}

// Index of the choice with this value, -1 if none.
func (m *Menu) Index(value string) int {
	for i, c := range m.Choices {
		if c.Value == value {
			return i
		}
	}
	return -1
}

// DeviceMenu is the DTYP choice list derived from device supports.
type DeviceMenu struct {
	Choices []string
}

func (dm *DeviceMenu) Index(choice string) int {
	for i, c := range dm.Choices {
		if c == choice {
			return i
		}
	}
	return -1
}
