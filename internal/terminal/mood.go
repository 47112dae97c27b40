package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/wellnessweavers/companion/internal/interaction/mood"
	"github.com/wellnessweavers/companion/internal/interaction/validate"
)

// MoodOrder is the order the picker lists moods in.
var MoodOrder = []string{"great", "good", "calm", "okay", "anxious", "low", "angry", "bad"}

var moodEmojis = map[string]string{
	"great":   "😄",
	"good":    "🙂",
	"calm":    "😌",
	"okay":    "😐",
	"anxious": "😰",
	"low":     "😔",
	"angry":   "😠",
	"bad":     "😞",
}

// MoodButton is one entry of the picker.
type MoodButton struct {
	mood     string
	selected bool
}

func (b *MoodButton) Mood() string { return b.mood }

func (b *MoodButton) SetSelected(selected bool) { b.selected = selected }

// Selected reports whether the button is highlighted.
func (b *MoodButton) Selected() bool { return b.selected }

// MoodButtons returns one button per mood in MoodOrder.
func MoodButtons() []*MoodButton {
	out := make([]*MoodButton, 0, len(MoodOrder))
	for _, m := range MoodOrder {
		out = append(out, &MoodButton{mood: m})
	}
	return out
}

// Emojis converts buttons for mood.UI.
func Emojis(buttons []*MoodButton) []mood.Emoji {
	out := make([]mood.Emoji, len(buttons))
	for i, b := range buttons {
		out[i] = b
	}
	return out
}

// RenderMoodPicker prints the picker with the selected mood marked.
func RenderMoodPicker(w io.Writer, buttons []*MoodButton) {
	for i, b := range buttons {
		marker := " "
		if b.selected {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %d. %s %s\n", marker, i+1, moodEmojis[b.mood], b.mood)
	}
}

// DetailsPanel announces the optional detail section.
type DetailsPanel struct {
	w    io.Writer
	open bool
}

// NewDetailsPanel prints to w.
func NewDetailsPanel(w io.Writer) *DetailsPanel { return &DetailsPanel{w: w} }

func (p *DetailsPanel) Show() {
	if !p.open {
		fmt.Fprintln(p.w, "Add details (optional): notes, intensity, energy, stress, activities")
	}
	p.open = true
}

func (p *DetailsPanel) Hide() { p.open = false }

// Open reports whether the details are currently shown.
func (p *DetailsPanel) Open() bool { return p.open }

// Field is a form input backed by a string value.
type Field struct {
	name        string
	value       string
	constraints validate.Constraints
	valid       bool
	feedback    *fieldFeedback
}

type fieldFeedback struct {
	w    io.Writer
	name string
	msg  string
}

func (f *fieldFeedback) SetMessage(msg string) {
	f.msg = msg
	if msg != "" && f.w != nil {
		fmt.Fprintf(f.w, "  %s: %s\n", f.name, msg)
	}
}

func (f *Field) Name() string { return f.name }

func (f *Field) Value() string { return f.value }

func (f *Field) Constraints() validate.Constraints { return f.constraints }

func (f *Field) SetValid(valid bool) { f.valid = valid }

func (f *Field) Feedback() validate.FeedbackSlot { return f.feedback }

// Valid is the outcome of the last validation.
func (f *Field) Valid() bool { return f.valid }

// Message is the last validation message shown for the field.
func (f *Field) Message() string { return f.feedback.msg }

// DetailsForm holds the optional mood details typed on the command line.
type DetailsForm struct {
	mu     sync.Mutex
	fields []*Field
	byName map[string]*Field
}

func levelConstraints() validate.Constraints {
	lo, hi := 1.0, 10.0
	return validate.Constraints{Kind: validate.KindNumber, Min: &lo, Max: &hi}
}

// NewDetailsForm creates the form; validation messages go to w.
func NewDetailsForm(w io.Writer) *DetailsForm {
	specs := []struct {
		name string
		c    validate.Constraints
	}{
		{"notes", validate.Constraints{Kind: validate.KindText, MaxLength: 2000}},
		{"intensity", levelConstraints()},
		{"energy", levelConstraints()},
		{"stress", levelConstraints()},
		{"activities", validate.Constraints{Kind: validate.KindText, MaxLength: 200, Pattern: `[A-Za-z0-9 ,_-]*`}},
	}
	form := &DetailsForm{byName: make(map[string]*Field, len(specs))}
	for _, s := range specs {
		f := &Field{name: s.name, constraints: s.c, valid: true, feedback: &fieldFeedback{w: w, name: s.name}}
		form.fields = append(form.fields, f)
		form.byName[s.name] = f
	}
	return form
}

// Set assigns a raw field value and validates it, like leaving an input.
// Unknown names and invalid values are rejected.
func (f *DetailsForm) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	field.value = value
	if !validate.Field(field) {
		return fmt.Errorf("%s: %s", name, field.feedback.msg)
	}
	return nil
}

// Field returns the named input.
func (f *DetailsForm) Field(name string) *Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byName[name]
}

func (f *DetailsForm) Inputs() []validate.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]validate.Input, len(f.fields))
	for i, field := range f.fields {
		out[i] = field
	}
	return out
}

func (f *DetailsForm) Details() mood.Details {
	f.mu.Lock()
	defer f.mu.Unlock()
	return mood.Details{
		Notes:       strings.TrimSpace(f.byName["notes"].value),
		Intensity:   optionalInt(f.byName["intensity"].value),
		EnergyLevel: optionalInt(f.byName["energy"].value),
		StressLevel: optionalInt(f.byName["stress"].value),
		Activities:  splitActivities(f.byName["activities"].value),
	}
}

func (f *DetailsForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range f.fields {
		field.value = ""
		field.valid = true
		field.feedback.msg = ""
	}
}

func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func splitActivities(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
