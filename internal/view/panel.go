package view

// Level is the severity of a panel message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a line of text shown with a panel.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Panel is the result of rendering one view.
type Panel struct {
	View     string    `json:"view"`
	Title    string    `json:"title,omitempty"`
	PNG      []byte    `json:"png,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Skipped  bool      `json:"skipped,omitempty"`
}

func (p *Panel) info(text string) {
	p.Messages = append(p.Messages, Message{Level: LevelInfo, Text: text})
}

func (p *Panel) warn(text string) {
	p.Messages = append(p.Messages, Message{Level: LevelWarning, Text: text})
}

func (p *Panel) fail(text string) {
	p.Messages = append(p.Messages, Message{Level: LevelError, Text: text})
}

// HasImage reports whether the view produced a figure.
func (p *Panel) HasImage() bool { return len(p.PNG) > 0 }

// Skip returns the panel of a view the user chose not to show.
func Skip(v View) *Panel {
	p := &Panel{View: v.Name(), Skipped: true}
	if text := v.SkipText(); text != "" {
		p.info(text)
	}
	return p
}

func calibCaveat(ifo string, floor float64) string {
	return "Caution: Strain data below " + number(floor) + " Hz from " + ifo + " aren't calibrated."
}
