package audit

import "fmt"

// IntegrityResult is the outcome of verifying one entity's history.
type IntegrityResult struct {
	Consistent bool     `json:"consistent"`
	Issues     []string `json:"issues"`
}

// CheckIntegrity inspects a history in ascending creation order and reports
// shape violations:
//   - entries exist but the earliest entry is not a create
//   - an update entry occurs after a delete entry
//
// The check is pure so tests can construct violating histories directly.
func CheckIntegrity(entries []*Entry) IntegrityResult {
	result := IntegrityResult{Consistent: true, Issues: []string{}}

	if len(entries) == 0 {
		return result
	}

	hasCreate := false
	for _, e := range entries {
		if e.Action() == ActionCreate {
			hasCreate = true
			break
		}
	}
	if !hasCreate {
		result.Consistent = false
		result.Issues = append(result.Issues, "history has entries but no create entry")
	} else if entries[0].Action() != ActionCreate {
		result.Consistent = false
		result.Issues = append(result.Issues,
			fmt.Sprintf("earliest entry is %q, expected create", entries[0].Action()))
	}

	deleted := false
	for _, e := range entries {
		switch e.Action() {
		case ActionDelete:
			deleted = true
		case ActionUpdate:
			if deleted {
				result.Consistent = false
				result.Issues = append(result.Issues,
					fmt.Sprintf("update entry %d occurs after a delete entry", e.ID()))
			}
		}
	}

	return result
}
