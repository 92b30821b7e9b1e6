package budget

import (
	"github.com/tokenfit/tokenfit/message"
	"github.com/tokenfit/tokenfit/tokenize"
)

// RoleBreakdown returns the estimated token total per message role.
func RoleBreakdown(counter tokenize.Counter, msgs []message.Message) map[message.Role]int {
	out := make(map[message.Role]int)
	for _, m := range msgs {
		out[m.Role] += counter.Count(m.Text())
	}
	return out
}
