package personalize

import (
	"testing"

	"github.com/ignite/campaigner/internal/domain"
)

func TestRenderReplacesAllTokens(t *testing.T) {
	c := &domain.Contact{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Segment:   "vip",
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single token",
			in:   "Hello {{firstName}}!",
			want: "Hello Jane!",
		},
		{
			name: "every token once",
			in:   "{{firstName}} {{lastName}} <{{email}}> [{{segment}}]",
			want: "Jane Doe <jane@example.com> [vip]",
		},
		{
			name: "repeated token replaced globally",
			in:   "{{firstName}}, yes you, {{firstName}}",
			want: "Jane, yes you, Jane",
		},
		{
			name: "no tokens returned unchanged",
			in:   "Plain content with {curly} braces",
			want: "Plain content with {curly} braces",
		},
		{
			name: "unknown token left as literal",
			in:   "Hi {{nickname}}",
			want: "Hi {{nickname}}",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in, tt.in, tt.in, c)
			if got.Subject != tt.want || got.HTML != tt.want || got.Text != tt.want {
				t.Errorf("Render(%q) = %+v, want %q in all fields", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderMissingFieldsDegradeToEmpty(t *testing.T) {
	c := &domain.Contact{Email: "x@example.com"}

	got := Render("{{firstName}}|{{lastName}}|{{segment}}", "", "", c)
	if got.Subject != "||general" {
		t.Errorf("Subject = %q, want %q", got.Subject, "||general")
	}
}

func TestRenderNilContact(t *testing.T) {
	got := Render("Hi {{firstName}}, segment {{segment}}", "", "", nil)
	if got.Subject != "Hi , segment general" {
		t.Errorf("Subject = %q", got.Subject)
	}
}

func TestRenderFieldsIndependent(t *testing.T) {
	c := &domain.Contact{FirstName: "Ana", Email: "ana@example.com", Segment: "general"}

	got := Render("Subject {{firstName}}", "<p>{{email}}</p>", "text {{segment}}", c)
	if got.Subject != "Subject Ana" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.HTML != "<p>ana@example.com</p>" {
		t.Errorf("HTML = %q", got.HTML)
	}
	if got.Text != "text general" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestRenderTemplate(t *testing.T) {
	tpl := &domain.Template{
		Subject:     "Welcome {{firstName}}",
		HTMLContent: "<h1>Hello {{firstName}} {{lastName}}</h1>",
		TextContent: "Hello {{firstName}}",
	}
	c := &domain.Contact{FirstName: "Bo", LastName: "Li"}

	got := RenderTemplate(tpl, c)
	if got.Subject != "Welcome Bo" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.HTML != "<h1>Hello Bo Li</h1>" {
		t.Errorf("HTML = %q", got.HTML)
	}
	if got.Text != "Hello Bo" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestContactFieldsDefaultSegment(t *testing.T) {
	f := ContactFields(&domain.Contact{Email: "a@b.co"})
	if f.Segment != domain.DefaultSegment {
		t.Errorf("Segment = %q, want %q", f.Segment, domain.DefaultSegment)
	}
}
