package display

import "go.uber.org/multierr"

type multi []Display

// Multi renders to every display, even after one of them fails.
func Multi(displays ...Display) Display {
	return multi(displays)
}

func (m multi) Render(rate int64) error {
	var err error
	for _, display := range m {
		err = multierr.Append(err, display.Render(rate))
	}

	return err
}
