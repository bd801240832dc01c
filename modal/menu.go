package modal

import "strconv"

// MenuItem is one entry of the oscillator count menu.
type MenuItem struct {
	Label   string
	Count   int
	Checked bool
}

// OscCountMenu lists the selectable oscillator counts, marking the one in use.
func (e *Engine) OscCountMenu() []MenuItem {
	cur := e.OscCount()
	items := make([]MenuItem, 0, len(OscCounts))
	for _, n := range OscCounts {
		items = append(items, MenuItem{
			Label:   strconv.Itoa(n),
			Count:   n,
			Checked: n == cur,
		})
	}
	return items
}

// Select applies a menu entry.
func (e *Engine) Select(item MenuItem) error {
	return e.SetOscCount(item.Count)
}
