package render

import (
	"strings"
	"testing"
)

func TestRender_Heading(t *testing.T) {
	out, err := NewGoldmark(Options{Extended: true}).Render([]byte("# Hello"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.TrimSpace(string(out)) != "<h1>Hello</h1>" {
		t.Errorf("out = %q", out)
	}
}

func TestRender_FencedCode(t *testing.T) {
	src := "```go\nfmt.Println(\"hi\")\n```\n"
	for _, extended := range []bool{false, true} {
		out, err := RenderString(src, extended)
		if err != nil {
			t.Fatalf("RenderString: %v", err)
		}
		if !strings.Contains(out, `<pre><code class="language-go">`) {
			t.Errorf("extended=%v: missing fenced block in %q", extended, out)
		}
	}
}

func TestRender_ExtendedConstructs(t *testing.T) {
	src := strings.Join([]string{
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"~~gone~~",
		"",
		"Term",
		": Definition",
		"",
		"Note[^1].",
		"",
		"[^1]: Footnote text.",
		"",
	}, "\n")

	cases := []struct {
		tag      string
		extended bool
	}{
		{"<table>", true},
		{"<del>gone</del>", true},
		{"<dl>", true},
		{`class="footnotes"`, true},
		{"<table>", false},
		{"<del>", false},
		{"<dl>", false},
	}
	ext, err := RenderString(src, true)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	plain, err := RenderString(src, false)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	for _, c := range cases {
		out := plain
		if c.extended {
			out = ext
		}
		if got := strings.Contains(out, c.tag); got != c.extended {
			t.Errorf("extended=%v contains %q = %v", c.extended, c.tag, got)
		}
	}
}

func TestRender_HeadingAttributes(t *testing.T) {
	out, err := RenderString("# Intro {#start .lead}\n", true)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if !strings.Contains(out, `id="start"`) || !strings.Contains(out, `class="lead"`) {
		t.Errorf("attributes not applied: %q", out)
	}
}

func TestRender_RawHTML(t *testing.T) {
	src := "<div class=\"box\">kept</div>\n"
	out, err := NewGoldmark(Options{}).Render([]byte(src))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), `<div class="box">kept</div>`) {
		t.Errorf("raw HTML dropped: %q", out)
	}

	out, err = NewGoldmark(Options{Safe: true}).Render([]byte(src))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), `<div class="box">`) {
		t.Errorf("raw HTML should be omitted in safe mode: %q", out)
	}
}

func TestRender_HardWraps(t *testing.T) {
	out, err := NewGoldmark(Options{HardWraps: true}).Render([]byte("one\ntwo\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<br>") {
		t.Errorf("expected <br> in %q", out)
	}
}
