// Package validate applies input constraints to form fields and reflects
// the result back into the field's visual state.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the input type a field declares.
type Kind string

const (
	KindText   Kind = "text"
	KindEmail  Kind = "email"
	KindNumber Kind = "number"
)

// Constraints mirrors the attributes a form input can carry.
type Constraints struct {
	Kind      Kind
	Required  bool
	MinLength int
	MaxLength int
	// Pattern must match the whole value.
	Pattern string
	Min     *float64
	Max     *float64
}

// Input is a single form field.
type Input interface {
	Name() string
	Value() string
	Constraints() Constraints
	SetValid(valid bool)
}

// FeedbackSlot displays the validation message next to a field.
type FeedbackSlot interface {
	SetMessage(msg string)
}

// WithFeedback is implemented by inputs that have a feedback slot.
type WithFeedback interface {
	Feedback() FeedbackSlot
}

// InputSet is a form.
type InputSet interface {
	Inputs() []Input
}

const (
	msgRequired = "Please fill out this field."
	msgEmail    = "Please enter an email address."
	msgNumber   = "Please enter a number."
	msgPattern  = "Please match the requested format."
)

// Check returns the validation message for value, or "" when it satisfies c.
func Check(value string, c Constraints) string {
	if strings.TrimSpace(value) == "" {
		if c.Required {
			return msgRequired
		}
		return ""
	}

	switch c.Kind {
	case KindEmail:
		if !isEmail(value) {
			return msgEmail
		}
	case KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return msgNumber
		}
		if c.Min != nil && n < *c.Min {
			return fmt.Sprintf("Value must be greater than or equal to %s.", formatNumber(*c.Min))
		}
		if c.Max != nil && n > *c.Max {
			return fmt.Sprintf("Value must be less than or equal to %s.", formatNumber(*c.Max))
		}
	}

	length := utf8.RuneCountInString(value)
	if c.MinLength > 0 && length < c.MinLength {
		return fmt.Sprintf("Please lengthen this text to %d characters or more (you are currently using %d characters).", c.MinLength, length)
	}
	if c.MaxLength > 0 && length > c.MaxLength {
		return fmt.Sprintf("Please shorten this text to %d characters or less (you are currently using %d characters).", c.MaxLength, length)
	}

	if c.Pattern != "" {
		re, err := regexp.Compile("^(?:" + c.Pattern + ")$")
		// an invalid pattern is ignored, as browsers do
		if err == nil && !re.MatchString(value) {
			return msgPattern
		}
	}
	return ""
}

// Field validates one input and updates its visual state. Safe to call on
// every blur.
func Field(in Input) bool {
	if in == nil {
		return true
	}
	msg := Check(in.Value(), in.Constraints())
	valid := msg == ""
	in.SetValid(valid)

	if fb, ok := in.(WithFeedback); ok {
		if slot := fb.Feedback(); slot != nil {
			slot.SetMessage(msg)
		}
	}
	return valid
}

// Form validates every required input, without stopping at the first
// failure, so all of them show feedback at once.
func Form(set InputSet) bool {
	if set == nil {
		return true
	}
	valid := true
	for _, in := range set.Inputs() {
		if in == nil || !in.Constraints().Required {
			continue
		}
		if !Field(in) {
			valid = false
		}
	}
	return valid
}

func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	// reject display-name forms like "Bob <bob@example.com>"
	return addr.Address == value && strings.Contains(value, "@")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
