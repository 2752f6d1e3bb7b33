package models

import "strings"

// CommandType enumerates the slash commands accepted over WhatsApp.
type CommandType string

const (
	CommandSummary     CommandType = "resumo"
	CommandRepasse     CommandType = "repasse"
	CommandPending     CommandType = "pendentes"
	CommandPaid        CommandType = "pago"
	CommandTransferred CommandType = "repassado"
	CommandHelp        CommandType = "ajuda"
	CommandUnknown     CommandType = "unknown"
)

// Command is a parsed manager instruction.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// IsCommand reports whether the text looks like a slash command.
func IsCommand(message string) bool {
	return strings.HasPrefix(strings.TrimSpace(message), "/")
}

// ParseCommand derives a Command from free-form text.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(message)))
	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.TrimPrefix(tokens[0], "/")); head {
	case CommandSummary, CommandRepasse, CommandPending, CommandPaid, CommandTransferred, CommandHelp:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
