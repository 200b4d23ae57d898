package world

import "fmt"

// Plot is one district's footprint.
type Plot struct {
	Coord HexCoord `json:"coord"`
	Name  string   `json:"name"`

	// Desirability in [0, 1] raises move-in interest and business survival.
	Desirability float64 `json:"desirability"`

	ResidentialSlots int `json:"residential_slots"`
	BusinessSlots    int `json:"business_slots"`
}

// Layout holds the plots of a settlement keyed by coordinate.
type Layout struct {
	Name   string             `json:"name"`
	Radius int                `json:"radius"`
	Plots  map[HexCoord]*Plot `json:"-"`
	order  []HexCoord
}

// NewLayout creates an empty layout with the given radius.
func NewLayout(name string, radius int) *Layout {
	return &Layout{Name: name, Radius: radius, Plots: make(map[HexCoord]*Plot)}
}

// Get returns the plot at the given coordinate, or nil if there is none.
func (l *Layout) Get(coord HexCoord) *Plot {
	return l.Plots[coord]
}

// Set places a plot at its coordinate.
func (l *Layout) Set(p *Plot) {
	if _, ok := l.Plots[p.Coord]; !ok {
		l.order = append(l.order, p.Coord)
	}
	l.Plots[p.Coord] = p
}

// Ordered returns the plots in generation order.
func (l *Layout) Ordered() []*Plot {
	out := make([]*Plot, len(l.order))
	for i, c := range l.order {
		out[i] = l.Plots[c]
	}
	return out
}

// Adjacent returns the plots bordering coord.
func (l *Layout) Adjacent(coord HexCoord) []*Plot {
	var out []*Plot
	for _, n := range coord.Neighbors() {
		if p := l.Plots[n]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Capacity sums residential and business slots across plots.
func (l *Layout) Capacity() (residential, business int) {
	for _, p := range l.Plots {
		residential += p.ResidentialSlots
		business += p.BusinessSlots
	}
	return residential, business
}

func (l *Layout) PlotCount() int { return len(l.Plots) }

// String returns a summary of the layout.
func (l *Layout) String() string {
	res, biz := l.Capacity()
	return fmt.Sprintf("Layout(%s, radius=%d, plots=%d, homes=%d, shops=%d)", l.Name, l.Radius, l.PlotCount(), res, biz)
}
