package relation

import "github.com/staffsight/ligature/internal/core/model"

// Link is a pending, uncommitted attachment: the target found by a search
// plus the relation kind and direction to apply. Searching produces links
// without mutating the graph; committing applies them.
//
// Outgoing tells whether the searched symbol is the edge source. For head
// attachments the head is the source (Outgoing false), matching the edge
// orientation "structural element supports symbol".
type Link struct {
	Target   *model.Interpretation
	Kind     Kind
	Outgoing bool
}
