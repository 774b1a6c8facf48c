package models

import "strings"

// CommandType enumerates the text commands understood by the dispatcher.
type CommandType string

const (
	CommandMilk    CommandType = "milk"
	CommandEggs    CommandType = "eggs"
	CommandWool    CommandType = "wool"
	CommandGoals   CommandType = "goals"
	CommandPlan    CommandType = "plan"
	CommandStats   CommandType = "stats"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction such as "/milk 40".
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// Product maps production commands onto their product.
func (c Command) Product() (ProductType, bool) {
	switch c.Type {
	case CommandMilk:
		return ProductMilk, true
	case CommandEggs:
		return ProductEggs, true
	case CommandWool:
		return ProductWool, true
	default:
		return "", false
	}
}

// ParseCommand derives a Command instance from free-form text.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))

	if normalized == "" {
		return Command{Type: CommandUnknown, Raw: message}
	}

	tokens := strings.Fields(normalized)
	cmd := Command{Raw: message}

	head := strings.TrimPrefix(tokens[0], "/")
	switch CommandType(head) {
	case CommandMilk, CommandEggs, CommandWool, CommandGoals, CommandPlan, CommandStats:
		cmd.Type = CommandType(head)
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
