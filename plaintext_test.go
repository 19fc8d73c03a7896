package mailer

import "testing"

func TestPlainTextFromHTML(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    string
	}{
		{
			description: "bare text",
			input:       "just words",
			expected:    "just words",
		},
		{
			description: "inline markup stripped",
			input:       "<p>Hello <b>world</b></p>",
			expected:    "Hello world",
		},
		{
			description: "paragraphs become lines",
			input:       "<p>one</p><p>two</p>",
			expected:    "one\n\ntwo",
		},
		{
			description: "line breaks preserved",
			input:       "one<br>two",
			expected:    "one\ntwo",
		},
		{
			description: "script and style dropped",
			input: "<html><head><title>t</title><style>p{}</style></head>" +
				"<body><script>alert(1)</script><p>visible</p></body></html>",
			expected: "visible",
		},
		{
			description: "empty document",
			input:       "",
			expected:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := PlainTextFromHTML(tc.input); got != tc.expected {
				t.Errorf("wanted %q but got %q", tc.expected, got)
			}
		})
	}
}
