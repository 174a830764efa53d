package profiles

import (
	"slices"
	"sort"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
)

type Tally struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Network holds, per referenced entity type, how many rows reference each
// entity id. Tallies are ordered by count, highest first.
type Network map[EntityType][]Tally

// CountNetwork scans the frames named in frameEntities for columns that
// reference other entities and counts how often each referenced id occurs.
// Frames are visited in frameOrder, followed by any remaining linked frame in
// name order. Values that are nil or equal to selfID are not counted. Every
// entity type in entityTypes is present in the result, even without tallies.
func CountNetwork(
	columns map[string][]string,
	frames map[string][]exhibit.Row,
	frameEntities map[string]map[string]EntityType,
	frameOrder []string,
	selfID string,
	entityTypes []EntityType) Network {

	type counter struct {
		order  []string
		counts map[string]int
	}

	counters := make(map[EntityType]*counter, len(entityTypes))
	get := func(t EntityType) *counter {
		c, ok := counters[t]
		if !ok {
			c = &counter{counts: map[string]int{}}
			counters[t] = c
		}
		return c
	}

	for _, t := range entityTypes {
		get(t)
	}

	for _, frameName := range visitOrder(frameEntities, frameOrder) {
		frameColumns, ok := columns[frameName]
		if !ok {
			continue
		}

		rows, ok := frames[frameName]
		if !ok {
			continue
		}

		// column index -> referenced entity type, visited by ascending index
		links := map[int]EntityType{}
		for column, target := range frameEntities[frameName] {
			if idx := slices.Index(frameColumns, column); idx >= 0 {
				links[idx] = target
			}
		}

		indices := make([]int, 0, len(links))
		for idx := range links {
			indices = append(indices, idx)
		}
		slices.Sort(indices)

		for _, row := range rows {
			for _, idx := range indices {
				if idx >= len(row) {
					continue
				}

				id, ok := exhibit.Key(row[idx])
				if !ok || id == selfID {
					continue
				}

				c := get(links[idx])
				if _, seen := c.counts[id]; !seen {
					c.order = append(c.order, id)
				}
				c.counts[id]++
			}
		}
	}

	network := make(Network, len(counters))

	for t, c := range counters {
		tallies := make([]Tally, 0, len(c.order))
		for _, id := range c.order {
			tallies = append(tallies, Tally{ID: id, Count: c.counts[id]})
		}

		sort.SliceStable(tallies, func(i, j int) bool {
			return tallies[i].Count > tallies[j].Count
		})

		network[t] = tallies
	}

	return network
}

func visitOrder(frameEntities map[string]map[string]EntityType, frameOrder []string) []string {
	order := make([]string, 0, len(frameEntities))

	for _, f := range frameOrder {
		if _, ok := frameEntities[f]; ok && !slices.Contains(order, f) {
			order = append(order, f)
		}
	}

	rest := make([]string, 0)
	for f := range frameEntities {
		if !slices.Contains(order, f) {
			rest = append(rest, f)
		}
	}
	slices.Sort(rest)

	return append(order, rest...)
}
