package audit

// Action is the kind of state-changing (or observed) event an entry records.
type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionView          Action = "view"
	ActionExport        Action = "export"
	ActionLogin         Action = "login"
	ActionLogout        Action = "logout"
	ActionConsentChange Action = "consent_change"
	ActionAIDecision    Action = "ai_decision"
)

func (a Action) String() string {
	return string(a)
}

func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionExport,
		ActionLogin, ActionLogout, ActionConsentChange, ActionAIDecision:
		return true
	}
	return false
}

// IsMutation reports whether the action documents a state change. Mutation
// entries must commit in the same transaction as the change they document;
// observation entries (view, export reads, login/logout) may be best-effort.
func (a Action) IsMutation() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionConsentChange:
		return true
	}
	return false
}
