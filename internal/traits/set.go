package traits

// Instance is a trait attached to a holder.
type Instance struct {
	Def       *Definition
	Source    string
	Timed     bool
	Remaining int

	key     string
	applied []Effect
}

// Set holds the traits attached to one holder in attachment order.
type Set struct {
	order []string
	items map[string]*Instance
}

func NewSet() *Set {
	return &Set{items: make(map[string]*Instance)}
}

func (s *Set) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Get returns the attached instance, or nil.
func (s *Set) Get(id string) *Instance {
	return s.items[id]
}

// IDs returns attached trait IDs in attachment order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set) Len() int { return len(s.order) }

func (s *Set) conflicting(def *Definition) []string {
	var out []string
	for _, id := range s.order {
		if s.items[id].Def.Conflicts(def) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Set) insert(inst *Instance) {
	s.items[inst.Def.ID] = inst
	s.order = append(s.order, inst.Def.ID)
}

func (s *Set) delete(id string) {
	delete(s.items, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
