package ioc

// registry is the frozen descriptor map shared by a root provider and every
// scope derived from it. It is never mutated after construction.
type registry struct {
	descriptors map[*identity]*Descriptor

	// order holds each identifier at the position of its first registration.
	order []*identity
}

// newRegistry copies the given descriptors into a frozen registry.
func newRegistry(descriptors map[*identity]*Descriptor, order []*identity) *registry {
	r := &registry{
		descriptors: make(map[*identity]*Descriptor, len(descriptors)),
		order:       make([]*identity, 0, len(order)),
	}

	for _, id := range order {
		d, ok := descriptors[id]
		if !ok {
			continue
		}

		r.descriptors[id] = d.clone()
		r.order = append(r.order, id)
	}

	return r
}

// find returns the descriptor for id.
func (r *registry) find(id *identity) (*Descriptor, bool) {
	d, ok := r.descriptors[id]
	return d, ok
}

// singletons returns the singleton descriptors in registration order.
func (r *registry) singletons() []*Descriptor {
	var out []*Descriptor
	for _, id := range r.order {
		if d := r.descriptors[id]; d.Lifetime == Singleton {
			out = append(out, d)
		}
	}
	return out
}

// len returns the number of registered identifiers.
func (r *registry) len() int {
	return len(r.descriptors)
}
