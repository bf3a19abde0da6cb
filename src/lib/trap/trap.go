package trap

// Handler runs in interrupt context for the line it was registered on. It
// must clear its device's status and acknowledge the controller before it
// returns or the line will fire again immediately.
type Handler func(line int)

// NumLines is the number of interrupt lines on the AM335x INTC.
const NumLines = 128

// Table maps interrupt lines to handlers. Registration happens during
// initialization, before IRQs are unmasked, so the table has no lock.
type Table struct {
	handlers   [NumLines]Handler
	registered [NumLines]bool
	unexpected Handler
}

// NewTable returns a table where every line goes to unexpected until
// something is registered for it. A nil unexpected drops the interrupt.
func NewTable(unexpected Handler) *Table {
	t := &Table{unexpected: unexpected}
	t.Reset()
	return t
}

// Reset puts every line back to the unexpected handler.
func (t *Table) Reset() {
	for i := 0; i < len(t.handlers); i++ {
		t.handlers[i] = t.unexpected
		t.registered[i] = false
	}
}

// Register binds h to line. Out of range lines are ignored.
func (t *Table) Register(line int, h Handler) {
	if line < 0 || line >= NumLines {
		return
	}
	if h == nil {
		t.handlers[line] = t.unexpected
		t.registered[line] = false
		return
	}
	t.handlers[line] = h
	t.registered[line] = true
}

// Registered reports if line has something other than the unexpected handler.
func (t *Table) Registered(line int) bool {
	if line < 0 || line >= NumLines {
		return false
	}
	return t.registered[line]
}

// Dispatch is called by the raw IRQ entry with the controller's active line.
func (t *Table) Dispatch(line int) {
	if line < 0 || line >= NumLines {
		if t.unexpected != nil {
			t.unexpected(line)
		}
		return
	}
	if h := t.handlers[line]; h != nil {
		h(line)
	}
}
