package tree

import "github.com/rebeliceyang/lazyaudience/internal/models"

// The updaters below never write into a slice they did not allocate, since the
// input group may share its backing arrays with other forests.

// AppendCondition adds c to the end of the group's conditions
func AppendCondition(c models.Condition) Updater {
	return func(g models.Group) models.Group {
		conds := make([]models.Condition, 0, len(g.Conditions)+1)
		conds = append(conds, g.Conditions...)
		g.Conditions = append(conds, c)
		return g
	}
}

// ReplaceCondition swaps the condition sharing c's id for c
func ReplaceCondition(c models.Condition) Updater {
	return func(g models.Group) models.Group {
		for i, existing := range g.Conditions {
			if existing.ID != c.ID {
				continue
			}
			conds := make([]models.Condition, len(g.Conditions))
			copy(conds, g.Conditions)
			conds[i] = c
			g.Conditions = conds
			return g
		}
		return g
	}
}

// EditCondition applies fn to the condition with the given id
func EditCondition(conditionID string, fn func(models.Condition) models.Condition) Updater {
	return func(g models.Group) models.Group {
		c, ok := g.FindCondition(conditionID)
		if !ok {
			return g
		}
		return ReplaceCondition(fn(c))(g)
	}
}

// DropCondition removes the condition with the given id
func DropCondition(conditionID string) Updater {
	return func(g models.Group) models.Group {
		if _, ok := g.FindCondition(conditionID); !ok {
			return g
		}
		conds := make([]models.Condition, 0, len(g.Conditions)-1)
		for _, c := range g.Conditions {
			if c.ID != conditionID {
				conds = append(conds, c)
			}
		}
		g.Conditions = conds
		return g
	}
}

// AppendSubgroup adds sub as the last child group
func AppendSubgroup(sub models.Group) Updater {
	return func(g models.Group) models.Group {
		subs := make([]models.Group, 0, len(g.SubGroups)+1)
		subs = append(subs, g.SubGroups...)
		g.SubGroups = append(subs, sub)
		return g
	}
}

// SetMode changes how the group's children combine
func SetMode(mode models.Mode) Updater {
	return func(g models.Group) models.Group {
		g.Mode = mode
		return g
	}
}

// CycleMode advances the group to the next mode
func CycleMode() Updater {
	return func(g models.Group) models.Group {
		g.Mode = g.Mode.Next()
		return g
	}
}

// SetAtLeastCount sets the at-least threshold, clamped to 1
func SetAtLeastCount(n int) Updater {
	return func(g models.Group) models.Group {
		g.AtLeastCount = models.ClampAtLeast(n)
		return g
	}
}

// ToggleExclude flips whether the group is negated
func ToggleExclude() Updater {
	return func(g models.Group) models.Group {
		g.Exclude = !g.Exclude
		return g
	}
}

// ToggleCollapsed flips the group's presentation state
func ToggleCollapsed() Updater {
	return func(g models.Group) models.Group {
		g.Collapsed = !g.Collapsed
		return g
	}
}
