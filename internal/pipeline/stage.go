package pipeline

// Stage is a state of the per-chunk translation state machine.
type Stage int

const (
	StageTranslating Stage = iota
	StageReviewing
	StageFormatting
	StageVerifying
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageTranslating:
		return "translating"
	case StageReviewing:
		return "reviewing"
	case StageFormatting:
		return "formatting"
	case StageVerifying:
		return "verifying"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Role names the author of a transcript message.
type Role string

const (
	RoleUserProxy  Role = "User_Proxy"
	RoleTranslator Role = "Subtitle_Translator"
	RoleReviewer   Role = "Translation_Reviewer"
	RoleFormatter  Role = "Subtitle_Formatter"
)
