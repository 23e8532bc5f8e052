package service

// Item represents a single to-do task.
type Item struct {
	ID       int    `json:"id"`
	Desc     string `json:"desc"`
	Complete bool   `json:"complete"`
}

// Data is the payload of a successful Response.
type Data struct {
	Items []Item `json:"items"`
}

// Response is the result of a successful service call.
type Response struct {
	Success bool `json:"success"`
	Data    Data `json:"data"`
}

// OK builds a successful Response carrying items.
// A nil slice is normalized to an empty list so it encodes as [].
func OK(items []Item) Response {
	if items == nil {
		items = []Item{}
	}
	return Response{Success: true, Data: Data{Items: items}}
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// IndexOf returns the position of the item with the given ID, or -1.
func IndexOf(items []Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
