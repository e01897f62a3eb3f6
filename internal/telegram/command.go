package telegram

import "strings"

// Command is the closed set of chat commands the bot understands.
// Anything that does not parse into one of the known variants becomes
// CommandUnknown, which gets the fixed unrecognized-command reply.
type Command int

const (
	CommandUnknown Command = iota
	CommandBalance
	CommandTransactions
	CommandInfo
	CommandHelp
	CommandBan
)

func (c Command) String() string {
	switch c {
	case CommandBalance:
		return "balance"
	case CommandTransactions:
		return "transactions"
	case CommandInfo:
		return "info"
	case CommandHelp:
		return "help"
	case CommandBan:
		return "ban"
	default:
		return "unknown"
	}
}

// ParseCommand extracts the command token and the optional argument
// from an inbound message text. Bot-mention suffixes (/balance@mybot)
// are stripped.
func ParseCommand(text string) (Command, string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return CommandUnknown, ""
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}

	arg := strings.Join(fields[1:], " ")

	switch name {
	case "balance":
		return CommandBalance, arg
	case "transactions":
		return CommandTransactions, arg
	case "info":
		return CommandInfo, arg
	case "help":
		return CommandHelp, arg
	case "ban":
		return CommandBan, arg
	default:
		return CommandUnknown, ""
	}
}
