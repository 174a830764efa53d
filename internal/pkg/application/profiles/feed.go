package profiles

import (
	"encoding/json"
	"slices"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
)

type FeedItem struct {
	Frame  string
	SortOn any
	Values map[string]any
}

// MarshalJSON flattens the row values and tags them with the source frame
// and the sort key
func (fi FeedItem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(fi.Values)+2)
	for k, v := range fi.Values {
		m[k] = v
	}

	m["frame"] = fi.Frame
	m["sortOn"] = fi.SortOn

	return json.Marshal(m)
}

// MergeFeed concatenates the rows of every frame that has a sort field and
// orders them by the value of that field, highest first. The order of items
// with equal sort keys is unspecified.
func MergeFeed(columns map[string][]string, frames map[string][]exhibit.Row, sortFields map[string]string) []FeedItem {
	feed := make([]FeedItem, 0)

	for frameName, sortField := range sortFields {
		frameColumns, ok := columns[frameName]
		if !ok {
			continue
		}

		sortIdx := slices.Index(frameColumns, sortField)
		if sortIdx < 0 {
			continue
		}

		for _, row := range frames[frameName] {
			item := FeedItem{
				Frame:  frameName,
				Values: make(map[string]any, len(frameColumns)),
			}

			for idx, column := range frameColumns {
				if idx < len(row) {
					item.Values[column] = row[idx]
				}
			}

			if sortIdx < len(row) {
				item.SortOn = row[sortIdx]
			}

			feed = append(feed, item)
		}
	}

	slices.SortFunc(feed, func(a, b FeedItem) int {
		return exhibit.Compare(b.SortOn, a.SortOn)
	})

	return feed
}
