package registry

import "sort"

// Coverage summarises how a set of entities was built: which tags went
// through a registered constructor and which fell back to the base entity.
type Coverage struct {
	Registered map[string]int `json:"registered"`
	Fallback   map[string]int `json:"fallback"`
}

// Trace walks entities and counts them by tag and construction path.
func Trace[T Tagged](entities []T) Coverage {
	c := Coverage{
		Registered: make(map[string]int),
		Fallback:   make(map[string]int),
	}
	for _, e := range entities {
		if rr, ok := any(e).(registeredReporter); ok && rr.Registered() {
			c.Registered[e.Type()]++
			continue
		}
		c.Fallback[e.Type()]++
	}
	return c
}

// FallbackTags returns the tags that were never handled by a registered
// constructor, sorted.
func (c Coverage) FallbackTags() []string {
	tags := make([]string, 0, len(c.Fallback))
	for tag := range c.Fallback {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
