package tiling

import "fmt"

// Input is an abstract user command delivered by the adapter (hotkey
// handler, IPC client). Layouts get first refusal on every input; the
// engine interprets the rest.
type Input int

const (
	InputNone Input = iota
	InputUp
	InputDown
	InputLeft
	InputRight
	InputShiftUp
	InputShiftDown
	InputShiftLeft
	InputShiftRight
	InputIncrease
	InputDecrease
	InputSetMaster
	InputFloat
	InputCycleLayout
)

var inputNames = map[Input]string{
	InputUp:          "up",
	InputDown:        "down",
	InputLeft:        "left",
	InputRight:       "right",
	InputShiftUp:     "shift-up",
	InputShiftDown:   "shift-down",
	InputShiftLeft:   "shift-left",
	InputShiftRight:  "shift-right",
	InputIncrease:    "increase",
	InputDecrease:    "decrease",
	InputSetMaster:   "set-master",
	InputFloat:       "float",
	InputCycleLayout: "cycle-layout",
}

func (i Input) String() string {
	if name, ok := inputNames[i]; ok {
		return name
	}
	return fmt.Sprintf("input(%d)", int(i))
}

// ParseInput resolves the wire/CLI name of an input command.
func ParseInput(name string) (Input, error) {
	for in, n := range inputNames {
		if n == name {
			return in, nil
		}
	}
	return InputNone, fmt.Errorf("unknown input command: %q", name)
}

// InputNames lists all recognized input command names.
func InputNames() []string {
	names := make([]string, 0, len(inputNames))
	for in := InputUp; in <= InputCycleLayout; in++ {
		names = append(names, inputNames[in])
	}
	return names
}
