// gameshow/messages/blocks.go
package messages

// Minimal Block Kit surface: just the object shapes this bot actually sends.

// TextObject is a Block Kit text object (plain_text or mrkdwn).
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Option is one entry of a static_select element.
type Option struct {
	Text  *TextObject `json:"text"`
	Value string      `json:"value"`
}

// Element is an interactive element inside an actions block.
type Element struct {
	Type        string      `json:"type"`
	Text        *TextObject `json:"text,omitempty"`
	ActionID    string      `json:"action_id,omitempty"`
	Value       string      `json:"value,omitempty"`
	Style       string      `json:"style,omitempty"`
	Placeholder *TextObject `json:"placeholder,omitempty"`
	Options     []Option    `json:"options,omitempty"`
}

// Block is a single layout block.
type Block struct {
	Type     string      `json:"type"`
	Text     *TextObject `json:"text,omitempty"`
	Elements []Element   `json:"elements,omitempty"`
}

// Message is a complete payload ready for chat.postMessage or a response_url
// post. The orchestrator forwards these verbatim.
type Message struct {
	ReplaceOriginal bool    `json:"replace_original,omitempty"`
	Text            string  `json:"text,omitempty"`
	Blocks          []Block `json:"blocks,omitempty"`
}

func plainText(text string) *TextObject {
	return &TextObject{Type: "plain_text", Text: text, Emoji: true}
}

func mrkdwn(text string) *TextObject {
	return &TextObject{Type: "mrkdwn", Text: text}
}

func section(text *TextObject) Block {
	return Block{Type: "section", Text: text}
}

func actions(elements ...Element) Block {
	return Block{Type: "actions", Elements: elements}
}

func button(label, actionID, style string) Element {
	return Element{
		Type:     "button",
		Text:     &TextObject{Type: "plain_text", Text: label},
		ActionID: actionID,
		Value:    actionID,
		Style:    style,
	}
}
