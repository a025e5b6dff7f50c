package sceneedit

// handlerEntry pairs a registered callback with its removal id.
type handlerEntry[T any] struct {
	id uint32
	fn func(T)
}

// handlerRegistry holds callbacks for one kind of event.
type handlerRegistry[T any] struct {
	entries []handlerEntry[T]
	nextID  uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

func (r *handlerRegistry[T]) add(fn func(T)) CallbackHandle {
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, handlerEntry[T]{id: id, fn: fn})
	return CallbackHandle{remove: func() { r.removeID(id) }}
}

// removeID deletes the entry from the slice to avoid nil iteration waste.
func (r *handlerRegistry[T]) removeID(id uint32) {
	for i := range r.entries {
		if r.entries[i].id == id {
			copy(r.entries[i:], r.entries[i+1:])
			r.entries[len(r.entries)-1] = handlerEntry[T]{}
			r.entries = r.entries[:len(r.entries)-1]
			return
		}
	}
}

func (r *handlerRegistry[T]) fire(v T) {
	for _, h := range r.entries {
		h.fn(v)
	}
}
