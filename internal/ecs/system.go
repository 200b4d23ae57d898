package ecs

// System is a unit of per-tick work.
type System interface {
	Name() string
	Update(w *World) error
}

// SystemFunc adapts a function into a System.
type SystemFunc struct {
	Label string
	Fn    func(w *World) error
}

func (s SystemFunc) Name() string { return s.Label }

func (s SystemFunc) Update(w *World) error { return s.Fn(w) }
