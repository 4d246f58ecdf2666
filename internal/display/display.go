package display

// Display receives every refreshed rate from the observer.
type Display interface {
	Render(rate int64) error
}

type NullDisplay struct{}

func (n *NullDisplay) Render(int64) error {
	return nil
}
