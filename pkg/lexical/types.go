package lexical

// root is the envelope of a serialized Lexical editor state.
type root struct {
	Root node `json:"root"`
}

// node is the subset of a Lexical node the text projection cares about.
// Formatting, styles and table geometry are deliberately ignored: the
// projection feeds change detection and checkpoints, not rendering.
type node struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ListType string `json:"listType"`
	Checked  bool   `json:"checked"`
	URL      string `json:"url"`
	Children []node `json:"children"`
}
