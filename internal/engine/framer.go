package engine

// Framer tracks container nesting for drivers built on delimiter-level
// decoders, which report object keys and string values alike.
type Framer struct {
	stack []frame
}

type frame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object or array.
func (f *Framer) Open(object bool) {
	f.stack = append(f.stack, frame{object: object, expectingKey: object})
}

// Close records the end of the innermost container, which completes a value
// in its parent.
func (f *Framer) Close() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.Value()
}

// Key reports whether the next string token is an object key and consumes
// the key position if so.
func (f *Framer) Key() bool {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	return false
}

// Value records a completed value in the innermost container.
func (f *Framer) Value() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// Depth returns the current nesting depth.
func (f *Framer) Depth() int { return len(f.stack) }
