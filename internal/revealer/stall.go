package revealer

// sample is one observation of the revealed content
type sample struct {
	height int
	items  int
}

func (s sample) grewFrom(prev sample) bool {
	return s.height > prev.height || s.items > prev.items
}

// stallCounter counts consecutive observations without growth
type stallCounter struct {
	count     int
	threshold int
}

func newStallCounter(threshold int) *stallCounter {
	if threshold < 1 {
		threshold = 1
	}
	return &stallCounter{threshold: threshold}
}

// observe records one observation and reports whether the threshold was reached
func (s *stallCounter) observe(grew bool) bool {
	if grew {
		s.count = 0
		return false
	}
	s.count++
	return s.count >= s.threshold
}
