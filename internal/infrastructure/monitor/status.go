package monitor

import (
	"maps"
	"slices"
	"time"
)

// Status is the outcome of the most recent probe round.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

func (s Status) clone() Status {
	return Status{Services: maps.Clone(s.Services), LastCheck: s.LastCheck}
}

// Down lists the failing services in name order.
func (s Status) Down() []string {
	var down []string
	for name, ok := range s.Services {
		if !ok {
			down = append(down, name)
		}
	}
	slices.Sort(down)
	return down
}
