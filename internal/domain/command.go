package domain

// CommandType identifies an action the user issues against a session.
type CommandType int

const (
	CmdUnknown CommandType = iota
	CmdNext
	CmdPrevious
	CmdFinish
	CmdStartTimer
	CmdPauseTimer
	CmdResumeTimer
	CmdResetTimer
	CmdRetry
	CmdStatus
	CmdFavorite
	CmdHelp
	CmdQuit
)

// String returns a human-readable command name.
func (c CommandType) String() string {
	switch c {
	case CmdNext:
		return "next"
	case CmdPrevious:
		return "previous"
	case CmdFinish:
		return "finish"
	case CmdStartTimer:
		return "start_timer"
	case CmdPauseTimer:
		return "pause_timer"
	case CmdResumeTimer:
		return "resume_timer"
	case CmdResetTimer:
		return "reset_timer"
	case CmdRetry:
		return "retry"
	case CmdStatus:
		return "status"
	case CmdFavorite:
		return "favorite"
	case CmdHelp:
		return "help"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a parsed user action.
type Command struct {
	Type CommandType
	Raw  string
}

// CommandFromString parses a command name as returned by String.
// Unrecognised names map to CmdUnknown.
func CommandFromString(s string) CommandType {
	for c := CmdNext; c <= CmdQuit; c++ {
		if c.String() == s {
			return c
		}
	}
	return CmdUnknown
}
