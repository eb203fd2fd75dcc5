package publish

// Level is the severity of a message sent to a Sink.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Sink receives the user-facing messages of a run.
type Sink interface {
	Emit(level Level, text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(level Level, text string)

// Emit calls f.
func (f SinkFunc) Emit(level Level, text string) { f(level, text) }

type discardSink struct{}

func (discardSink) Emit(Level, string) {}

// Message is one recorded Sink message.
type Message struct {
	Level Level
	Text  string
}

// Recorder is a Sink that keeps every message.
type Recorder struct {
	Messages []Message
}

// Emit appends the message.
func (r *Recorder) Emit(level Level, text string) {
	r.Messages = append(r.Messages, Message{Level: level, Text: text})
}

// Texts returns the recorded texts in order.
func (r *Recorder) Texts() []string {
	out := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = m.Text
	}
	return out
}
