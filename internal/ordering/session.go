package ordering

// Manager is the state container for one editing session of the merchandising
// page: the editable layout plus the at-most-one active drag gesture. It is
// not safe for concurrent use; a Manager belongs to a single request or
// session.
type Manager struct {
	Layout *Layout

	drag DragItem
}

// NewManager wraps an already reconciled layout.
func NewManager(layout *Layout) *Manager {
	return &Manager{Layout: layout}
}

// StartDrag records the dragged entity, overwriting any session a previous
// gesture failed to clear.
func (m *Manager) StartDrag(item DragItem) {
	m.drag = item
}

// EndDrag clears the session unconditionally so a stale gesture can never
// leak into an unrelated one.
func (m *Manager) EndDrag() {
	m.drag = nil
}

// Dragging returns the active drag session, if any.
func (m *Manager) Dragging() (DragItem, bool) {
	return m.drag, m.drag != nil
}

// HandleDrop applies the active drag onto target and ends the session. With
// no active session it is a no-op. Cross-kind drops reach this point because
// drop-zone styling is permissive; they are rejected here and the layout is
// left untouched.
func (m *Manager) HandleDrop(target DragItem) {
	if m.drag == nil {
		return
	}
	defer m.EndDrag()

	switch src := m.drag.(type) {
	case CategoryDrag:
		if dst, ok := target.(CategoryDrag); ok {
			MoveCategory(m.Layout, src.CategoryID, dst.CategoryID)
		}
	case ProductDrag:
		if dst, ok := target.(ProductDrag); ok {
			MoveProduct(m.Layout, src, dst)
		}
	}
}
