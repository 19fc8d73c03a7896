package mailer

import (
	"reflect"
	"testing"
)

func TestNormalizeRecipients(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    []string
	}{
		{
			description: "single address",
			input:       "a@x.com",
			expected:    []string{"a@x.com"},
		},
		{
			description: "comma separated",
			input:       "a@x.com,b@x.com",
			expected:    []string{"a@x.com", "b@x.com"},
		},
		{
			description: "semicolon separated",
			input:       "a@x.com;b@x.com",
			expected:    []string{"a@x.com", "b@x.com"},
		},
		{
			description: "mixed separators and messy whitespace",
			input:       " a@x.com ; b@x.com, c@x.com ",
			expected:    []string{"a@x.com", "b@x.com", "c@x.com"},
		},
		{
			description: "trailing separator",
			input:       "a@x.com,",
			expected:    []string{"a@x.com"},
		},
		{
			description: "empty input",
			input:       "",
			expected:    []string{},
		},
		{
			description: "separators only",
			input:       " ; , ; ",
			expected:    []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := NormalizeRecipients(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf(
					"wanted %v but got %v",
					tc.expected,
					got,
				)
			}
		})
	}
}

func TestRecipients(t *testing.T) {
	msg := &Message{To: " a@x.com ; b@x.com, c@x.com "}
	want := "a@x.com, b@x.com, c@x.com"
	if got := msg.Recipients(); got != want {
		t.Errorf("wanted %q but got %q", want, got)
	}
}

func TestAttachKeepsOrderWithoutReading(t *testing.T) {
	msg := &Message{}
	// None of these paths exist. Attach must not care: reading is
	// deferred to serialization.
	msg.Attach("/nowhere/one.txt")
	msg.Attach("/nowhere/two.jpg")
	msg.Attach("/nowhere/three.bin")

	want := []string{"/nowhere/one.txt", "/nowhere/two.jpg", "/nowhere/three.bin"}
	if !reflect.DeepEqual(msg.Attachments, want) {
		t.Errorf("wanted attachments %v but got %v", want, msg.Attachments)
	}
}
