package models

// RowType represents the type of a rendered tree row
type RowType string

const (
	RowTypeGroup     RowType = "group"
	RowTypeCondition RowType = "condition"
)

// Row is one visible line of the audience tree
type Row struct {
	Type        RowType
	Depth       int    // 0 for top-level groups
	GroupID     string // Group the row belongs to (the group itself for group rows)
	ParentID    string // Parent group id, empty for top-level groups
	ConditionID string // Set for condition rows only
	Index       int    // Position among its siblings
	Last        bool   // Whether it is the last sibling of its kind
}

// Flatten returns a flat list of visible rows for rendering.
// Collapsed groups contribute their header row only.
func Flatten(groups []Group) []Row {
	return flattenHelper(groups, "", 0)
}

// flattenHelper is a recursive helper for Flatten
func flattenHelper(groups []Group, parentID string, depth int) []Row {
	rows := make([]Row, 0)

	for i, g := range groups {
		rows = append(rows, Row{
			Type:     RowTypeGroup,
			Depth:    depth,
			GroupID:  g.ID,
			ParentID: parentID,
			Index:    i,
			Last:     i == len(groups)-1,
		})

		if g.Collapsed {
			continue
		}

		for j, c := range g.Conditions {
			rows = append(rows, Row{
				Type:        RowTypeCondition,
				Depth:       depth + 1,
				GroupID:     g.ID,
				ParentID:    parentID,
				ConditionID: c.ID,
				Index:       j,
				Last:        j == len(g.Conditions)-1,
			})
		}

		rows = append(rows, flattenHelper(g.SubGroups, g.ID, depth+1)...)
	}

	return rows
}

// ParentOf returns the id of the group that directly contains id.
// Top-level groups and unknown ids yield "", false.
func ParentOf(groups []Group, id string) (string, bool) {
	for _, g := range groups {
		for _, sub := range g.SubGroups {
			if sub.ID == id {
				return g.ID, true
			}
		}
		if parent, ok := ParentOf(g.SubGroups, id); ok {
			return parent, true
		}
	}
	return "", false
}
