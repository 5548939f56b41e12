package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		v    Values
		want string
	}{
		{
			name: "substitutes all placeholders",
			tmpl: "Hi {{customer_name}}, {{receiver_name}} can reach you at {{phone}}",
			v:    Values{CustomerName: "Acme", ReceiverName: "Jo", Phone: "15551234567"},
			want: "Hi Acme, Jo can reach you at 15551234567",
		},
		{
			name: "missing values render empty",
			tmpl: "Hi {{customer_name}}!",
			v:    Values{},
			want: "Hi !",
		},
		{
			name: "collapses internal whitespace runs",
			tmpl: "Hi {{customer_name}}",
			v:    Values{CustomerName: "Jo  e"},
			want: "Hi Jo e",
		},
		{
			name: "unknown placeholders pass through",
			tmpl: "Hi {{first_name}}",
			v:    Values{CustomerName: "Jo"},
			want: "Hi {{first_name}}",
		},
		{
			name: "trims leading and trailing whitespace",
			tmpl: "  Hi {{customer_name}}  ",
			v:    Values{CustomerName: "Jo"},
			want: "Hi Jo",
		},
		{
			name: "strips trailing spaces before newlines",
			tmpl: "Line one   \nLine two",
			v:    Values{},
			want: "Line one\nLine two",
		},
		{
			name: "preserves single newlines",
			tmpl: "Hi {{customer_name}},\nyour order shipped",
			v:    Values{CustomerName: "Jo"},
			want: "Hi Jo,\nyour order shipped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.v))
		})
	}
}

// Re-rendering an already rendered string with no placeholders left is a
// no-op beyond whitespace trimming.
func TestRenderStableOnRenderedOutput(t *testing.T) {
	first := Render("Hi {{customer_name}},   welcome", Values{CustomerName: "Jo"})
	assert.Equal(t, first, Render(first, Values{}))
}
