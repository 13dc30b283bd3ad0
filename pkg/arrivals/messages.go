package arrivals

import (
	"strings"

	"github.com/travigo/countdown/pkg/ctdf"
)

const (
	// DefaultMessagePriorityCeiling covers the priorities in use today (0-5)
	DefaultMessagePriorityCeiling = 5
	// MaxMessagePriority is the highest band the countdown API reserves
	MaxMessagePriority = 9

	messageBullet = " * "
)

// MessageBands maps a priority band to its message texts in arrival order
type MessageBands map[int][]string

// FilterMessages keeps the messages whose active window contains the server time
func FilterMessages(messages []ctdf.StopMessage, serverTime float64) MessageBands {
	bands := MessageBands{}

	for _, message := range messages {
		if !message.IsActive(serverTime) {
			continue
		}

		bands[message.Priority] = append(bands[message.Priority], message.Text)
	}

	return bands
}

// Format flattens bands 0 to ceiling into one bulleted display string, lowest band first
func (b MessageBands) Format(ceiling int) string {
	if ceiling > MaxMessagePriority {
		ceiling = MaxMessagePriority
	}

	var builder strings.Builder
	for priority := 0; priority <= ceiling; priority++ {
		for _, text := range b[priority] {
			builder.WriteString(messageBullet)
			builder.WriteString(text)
		}
	}

	return builder.String()
}
