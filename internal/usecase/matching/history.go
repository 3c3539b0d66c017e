package matching

// history remembers why recent orders stopped resting. It holds at most size
// ids and forgets the oldest first.
type history struct {
	size    int
	ids     []string
	next    int
	reasons map[string]string
}

func newHistory(size int) *history {
	return &history{
		size:    size,
		ids:     make([]string, 0, min(size, 1024)),
		reasons: make(map[string]string),
	}
}

func (h *history) add(orderID, reason string) {
	if h.size <= 0 {
		return
	}
	if _, exists := h.reasons[orderID]; exists {
		h.reasons[orderID] = reason
		return
	}

	if len(h.ids) < h.size {
		h.ids = append(h.ids, orderID)
	} else {
		delete(h.reasons, h.ids[h.next])
		h.ids[h.next] = orderID
		h.next = (h.next + 1) % h.size
	}
	h.reasons[orderID] = reason
}

func (h *history) get(orderID string) (string, bool) {
	reason, ok := h.reasons[orderID]
	return reason, ok
}
