// Package tree holds the structural operations the audience editor applies to
// its forest of groups. Nodes are addressed by id, never by path, and every
// operation returns a new forest. Untouched sibling subtrees are shared with
// the input, so callers must treat groups as immutable values.
package tree

import "github.com/rebeliceyang/lazyaudience/internal/models"

// Updater transforms one group into its replacement
type Updater func(models.Group) models.Group

// Update replaces the group with the given id by updater(group), copying every
// ancestor on the way up. An unknown id returns the forest unchanged.
func Update(groups []models.Group, id string, updater Updater) []models.Group {
	out, _ := update(groups, id, updater)
	return out
}

func update(groups []models.Group, id string, updater Updater) ([]models.Group, bool) {
	for i, g := range groups {
		var replacement models.Group
		if g.ID == id {
			replacement = updater(g)
		} else {
			subs, changed := update(g.SubGroups, id, updater)
			if !changed {
				continue
			}
			replacement = g
			replacement.SubGroups = subs
		}

		out := make([]models.Group, len(groups))
		copy(out, groups)
		out[i] = replacement
		return out, true
	}
	return groups, false
}

// Remove filters out the group with the given id at any depth. Removing the
// last top-level group yields an empty forest; refilling it is up to the caller.
func Remove(groups []models.Group, id string) []models.Group {
	out, _ := remove(groups, id)
	return out
}

func remove(groups []models.Group, id string) ([]models.Group, bool) {
	changed := false
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if g.ID == id {
			changed = true
			continue
		}
		if subs, subChanged := remove(g.SubGroups, id); subChanged {
			g.SubGroups = subs
			changed = true
		}
		out = append(out, g)
	}
	if !changed {
		return groups, false
	}
	return out, true
}

// Contains reports whether id names a group anywhere in the forest
func Contains(groups []models.Group, id string) bool {
	return models.ContainsGroup(groups, id)
}

// ContainsCondition reports whether the group holds a condition with the given id
func ContainsCondition(groups []models.Group, groupID, conditionID string) bool {
	g, ok := models.FindGroup(groups, groupID)
	if !ok {
		return false
	}
	_, ok = g.FindCondition(conditionID)
	return ok
}
