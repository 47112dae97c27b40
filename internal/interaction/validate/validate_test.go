package validate

import "testing"

type slot struct{ msg string }

func (s *slot) SetMessage(msg string) { s.msg = msg }

type field struct {
	name     string
	value    string
	c        Constraints
	valid    *bool
	feedback *slot
	checks   int
}

func (f *field) Name() string             { return f.name }
func (f *field) Value() string            { return f.value }
func (f *field) Constraints() Constraints { return f.c }
func (f *field) SetValid(v bool) {
	f.checks++
	f.valid = &v
}

type fieldWithFeedback struct{ *field }

func (f fieldWithFeedback) Feedback() FeedbackSlot { return f.feedback }

type form []Input

func (f form) Inputs() []Input { return f }

func ptr(f float64) *float64 { return &f }

func TestCheckMessages(t *testing.T) {
	cases := []struct {
		name  string
		value string
		c     Constraints
		want  string
	}{
		{"required empty", "  ", Constraints{Required: true}, msgRequired},
		{"optional empty", "", Constraints{MinLength: 3}, ""},
		{"bad email", "not-an-email", Constraints{Kind: KindEmail}, msgEmail},
		{"display name email", "Bob <bob@example.com>", Constraints{Kind: KindEmail}, msgEmail},
		{"good email", "bob@example.com", Constraints{Kind: KindEmail, Required: true}, ""},
		{"not a number", "ten", Constraints{Kind: KindNumber}, msgNumber},
		{"below min", "0", Constraints{Kind: KindNumber, Min: ptr(1)}, "Value must be greater than or equal to 1."},
		{"above max", "11", Constraints{Kind: KindNumber, Max: ptr(10)}, "Value must be less than or equal to 10."},
		{"too short", "ab", Constraints{MinLength: 3}, "Please lengthen this text to 3 characters or more (you are currently using 2 characters)."},
		{"too long", "abcd", Constraints{MaxLength: 3}, "Please shorten this text to 3 characters or less (you are currently using 4 characters)."},
		{"pattern anchored", "abc1", Constraints{Pattern: "[a-z]+"}, msgPattern},
		{"pattern ok", "abc", Constraints{Pattern: "[a-z]+"}, ""},
		{"invalid pattern ignored", "abc", Constraints{Pattern: "("}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Check(tc.value, tc.c); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFieldWritesFeedback(t *testing.T) {
	f := &field{name: "email", c: Constraints{Kind: KindEmail, Required: true}, feedback: &slot{}}
	in := fieldWithFeedback{f}

	if Field(in) {
		t.Fatalf("expected empty required email to be invalid")
	}
	if f.valid == nil || *f.valid {
		t.Fatalf("expected field to be marked invalid")
	}
	if f.feedback.msg != msgRequired {
		t.Fatalf("unexpected feedback %q", f.feedback.msg)
	}

	f.value = "me@example.com"
	if !Field(in) {
		t.Fatalf("expected valid email")
	}
	if !*f.valid {
		t.Fatalf("expected field to be marked valid")
	}
	if f.feedback.msg != "" {
		t.Fatalf("expected feedback to be cleared, got %q", f.feedback.msg)
	}
}

func TestFormChecksEveryRequiredField(t *testing.T) {
	a := &field{name: "a", c: Constraints{Required: true}}
	b := &field{name: "b", c: Constraints{Required: true}}
	optional := &field{name: "notes", c: Constraints{MaxLength: 1}, value: "too long"}

	if Form(form{a, optional, b}) {
		t.Fatalf("expected form to be invalid")
	}
	if a.checks != 1 || b.checks != 1 {
		t.Fatalf("expected both required fields to be checked, got a=%d b=%d", a.checks, b.checks)
	}
	if optional.checks != 0 {
		t.Fatalf("optional fields are not part of the form gate")
	}

	a.value, b.value = "x", "y"
	if !Form(form{a, optional, b}) {
		t.Fatalf("expected form to be valid")
	}
}
