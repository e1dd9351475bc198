package survey

// Keyboard describes the input affordance attached to an outbound message.
type Keyboard int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone Keyboard = iota
	// KeyboardSkip shows a one-button reply keyboard with the skip token.
	KeyboardSkip
	// KeyboardRemove hides any previously shown reply keyboard.
	KeyboardRemove
)

// Message is one outbound chat message, transport-agnostic.
type Message struct {
	Text     string
	Keyboard Keyboard
	Markdown bool
}

// Reply is the ordered set of messages an engine operation wants delivered.
type Reply struct {
	Messages []Message
}

func reply(msgs ...Message) Reply {
	return Reply{Messages: msgs}
}

func textMsg(text string, kb Keyboard) Message {
	return Message{Text: text, Keyboard: kb}
}

func mdMsg(text string, kb Keyboard) Message {
	return Message{Text: text, Keyboard: kb, Markdown: true}
}
