package domain

// Action is a moderation verb. The set is closed.
type Action string

const (
	ActionFlag        Action = "flag"
	ActionWarn        Action = "warn"
	ActionBan         Action = "ban"
	ActionShadowban   Action = "shadowban"
	ActionDelete      Action = "delete"
	ActionForceDelete Action = "force_delete"
	ActionRestore     Action = "restore"
	ActionEdit        Action = "edit"
	ActionPause       Action = "pause"
	ActionUnpause     Action = "unpause"
	ActionView        Action = "view"
)

// Actions lists every moderation verb.
func Actions() []Action {
	return []Action{
		ActionFlag, ActionWarn, ActionBan, ActionShadowban, ActionDelete, ActionForceDelete,
		ActionRestore, ActionEdit, ActionPause, ActionUnpause, ActionView,
	}
}

// Valid reports whether a is one of the known verbs.
func (a Action) Valid() bool {
	for _, known := range Actions() {
		if a == known {
			return true
		}
	}
	return false
}

// Surveillance audit actions.
const (
	AuditStartSurveillance = "start_surveillance"
	AuditStopSurveillance  = "stop_surveillance"
)
