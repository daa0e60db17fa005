package chat

import "strings"

// Rule short-circuits a send with a canned reply when Match accepts the
// lower-cased input.
type Rule struct {
	Name  string
	Match func(lower string) bool
	Reply string
}

const creatorReply = "I was made by **Reinier Mariscotes**. You can reach him at reinier231@gmail.com.\n\n" +
	"• Passionate AI Developer\n" +
	"• Building innovative solutions\n" +
	"• Front-End Developer\n" +
	"• SEO Specialist\n" +
	"• Always learning and improving"

// DefaultRules answers identity questions about the author locally.
var DefaultRules = []Rule{
	{
		Name:  "creator",
		Match: ContainsAny("who made you", "who created you", "reinier"),
		Reply: creatorReply,
	},
}

func ContainsAny(phrases ...string) func(string) bool {
	return func(lower string) bool {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

// matchRule returns the first rule accepting input, in order.
func matchRule(rules []Rule, input string) (Rule, bool) {
	lower := strings.ToLower(input)
	for _, r := range rules {
		if r.Match != nil && r.Match(lower) {
			return r, true
		}
	}
	return Rule{}, false
}
