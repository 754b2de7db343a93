package notification

import "sort"

// ruleKey identifies the (table, action) pair a trigger rule belongs to.
type ruleKey struct {
	Table  string
	Action Action
}

// triggerIndex is built once over a loaded candidate set so matching is map
// lookups instead of re-scanning every template's rules per check.
type triggerIndex struct {
	// statusSpecific records, per (table, action) pair, which status ids have
	// a rule anywhere in the candidate set. Its presence for a pair shadows
	// every generic rule for that pair.
	statusSpecific map[ruleKey]map[int]struct{}
	generic        map[ruleKey]struct{}
}

func newTriggerIndex(templates []Template) *triggerIndex {
	idx := &triggerIndex{
		statusSpecific: make(map[ruleKey]map[int]struct{}),
		generic:        make(map[ruleKey]struct{}),
	}
	for _, t := range templates {
		if !t.Active {
			continue
		}
		for _, rule := range t.Triggers {
			key := ruleKey{Table: rule.TableName, Action: rule.Action}
			if rule.StatusID == nil {
				idx.generic[key] = struct{}{}
				continue
			}
			if idx.statusSpecific[key] == nil {
				idx.statusSpecific[key] = make(map[int]struct{})
			}
			idx.statusSpecific[key][*rule.StatusID] = struct{}{}
		}
	}
	return idx
}

// Resolver selects the single best-matching active template for a trigger.
type Resolver struct{}

// NewResolver creates a template resolver.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the best-matching active template among the candidates for
// (table, action, statusID), or nil when none matches.
//
// Status-specific rules shadow generic ones per (table, action) pair across
// the whole candidate set: once any template defines a status-specific rule
// for the pair, a transition into a status without its own rule matches
// nothing rather than falling back to a generic rule. Generic rules apply
// only when the pair has no status-specific rule at all. An event without a
// status transition never matches a status-specific rule.
//
// Ties between matching templates are broken by recency: the most recently
// created template (highest id) wins.
func (r *Resolver) Resolve(candidates []Template, table string, action Action, statusID *int) *Template {
	ordered := make([]Template, 0, len(candidates))
	for _, t := range candidates {
		if t.Active {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID > ordered[j].ID })

	idx := newTriggerIndex(ordered)
	key := ruleKey{Table: table, Action: action}

	for i := range ordered {
		if templateMatches(&ordered[i], idx, key, statusID) {
			return &ordered[i]
		}
	}
	return nil
}

func templateMatches(t *Template, idx *triggerIndex, key ruleKey, statusID *int) bool {
	pairHasStatusRules := len(idx.statusSpecific[key]) > 0

	for _, rule := range t.Triggers {
		if rule.TableName != key.Table || rule.Action != key.Action {
			continue
		}
		switch {
		case statusID == nil:
			// Non-transition events only ever match generic rules.
			if rule.StatusID == nil {
				return true
			}
		case pairHasStatusRules:
			// The pair is governed by status-specific rules; only an exact
			// status match counts.
			if rule.StatusID != nil && *rule.StatusID == *statusID {
				return true
			}
		default:
			// No status-specific rule exists anywhere for this pair; a
			// transition falls back to the generic rule.
			if rule.StatusID == nil {
				return true
			}
		}
	}
	return false
}
