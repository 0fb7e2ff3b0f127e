package hn

// Item represents a Hacker News item (story, comment, etc.)
// A missing item decodes from JSON null into the zero Item.
type Item struct {
	ID      int    `json:"id"`
	Type    string `json:"type,omitempty"`
	By      string `json:"by,omitempty"`
	Title   string `json:"title,omitempty"`
	Score   int    `json:"score,omitempty"`
	Kids    []int  `json:"kids,omitempty"`
	Parent  int    `json:"parent,omitempty"`
	Dead    bool   `json:"dead,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Missing reports whether the API returned null for the requested id.
func (i *Item) Missing() bool {
	return i == nil || i.ID == 0
}

// Children returns the item's kid ids, empty when the item has none.
func (i *Item) Children() []int {
	if i == nil {
		return nil
	}
	return i.Kids
}
