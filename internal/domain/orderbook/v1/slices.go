package orderbookv1

// Orders is a slice of Order pointers, sortable by arrival.
type Orders []*Order

func (o Orders) Len() int           { return len(o) }
func (o Orders) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o Orders) Less(i, j int) bool { return o[i].Sequence < o[j].Sequence }
