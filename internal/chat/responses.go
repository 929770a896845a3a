package chat

import (
	"math/rand/v2"
	"time"
)

// Greeting opens every conversation.
const Greeting = "Protocol initialized. Agent CORE online. How can I assist you with your digital architecture?"

// DefaultTypingDelay is how long the agent "types" before answering.
const DefaultTypingDelay = 1500 * time.Millisecond

// Responses is the fixed reply set. There is no dialogue state: every
// inbound message is answered with one of these.
var Responses = [...]string{
	"Analyzing request parameters...",
	"Accessing Onyx secure database...",
	"That is within our operational capabilities.",
	"I can schedule a briefing with the Chairman.",
	"Deploying visualization protocols.",
}

// PickResponse maps seed onto the reply set.
func PickResponse(seed uint64) string {
	return Responses[seed%uint64(len(Responses))]
}

// SeedSource yields seeds for PickResponse.
type SeedSource func() uint64

// Responder draws a reply per message.
type Responder struct {
	seed SeedSource
}

// NewResponder uses source for seeds, or a random source when nil.
func NewResponder(source SeedSource) *Responder {
	if source == nil {
		source = rand.Uint64
	}
	return &Responder{seed: source}
}

// Reply returns the canned answer for one inbound message. The text itself
// does not influence the choice.
func (r *Responder) Reply(string) string {
	return PickResponse(r.seed())
}
