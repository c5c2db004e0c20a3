package document

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

const page = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Browser Kerberos Setup</title>
</head>
<body>
<div id="ssbrowser-msg"></div>
<p>Static prose</p>
</body>
</html>`

func TestInjectStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		path     string
		expected string
		wantErr  error
	}{
		{
			name:     "injects before </head>",
			html:     "<html><head></head><body>Hi</body></html>",
			path:     "../ui/css/ipa.css",
			expected: `<html><head><link rel="stylesheet" type="text/css" href="../ui/css/ipa.css"></head><body>Hi</body></html>`,
		},
		{
			name:     "injects before </HEAD> mixed case",
			html:     "<html><HEAD></HEAD><body>Hi</body></html>",
			path:     "a.css",
			expected: `<html><HEAD><link rel="stylesheet" type="text/css" href="a.css"></HEAD><body>Hi</body></html>`,
		},
		{
			name:     "injects after <body> when no </head>",
			html:     `<html><body class="x">Hi</body></html>`,
			path:     "a.css",
			expected: `<html><body class="x"><link rel="stylesheet" type="text/css" href="a.css">Hi</body></html>`,
		},
		{
			name:     "prepends to bare fragment",
			html:     "<p>Hi</p>",
			path:     "a.css",
			expected: `<link rel="stylesheet" type="text/css" href="a.css"><p>Hi</p>`,
		},
		{
			name:     "escapes href",
			html:     "<html><head></head></html>",
			path:     `x"><script>alert(1)</script>.css`,
			expected: `<html><head><link rel="stylesheet" type="text/css" href="x&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;.css"></head></html>`,
		},
		{
			name:    "empty path is rejected",
			html:    "<html><head></head></html>",
			path:    "",
			wantErr: ErrEmptyReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := New(tt.html)
			err := d.InjectStyle(context.Background(), tt.path)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("InjectStyle() error = %v, want %v", err, tt.wantErr)
				}
				if d.String() != tt.html {
					t.Errorf("failed InjectStyle() modified document: %q", d.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("InjectStyle() unexpected error: %v", err)
			}
			if got := d.String(); got != tt.expected {
				t.Errorf("InjectStyle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInject_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := New(page)

	for i := 0; i < 3; i++ {
		if err := d.InjectStyle(ctx, "../ui/css/ipa.css"); err != nil {
			t.Fatalf("InjectStyle() error: %v", err)
		}
		if err := d.InjectIcon(ctx, "../ui/favicon.ico"); err != nil {
			t.Fatalf("InjectIcon() error: %v", err)
		}
		if err := d.RunScript(ctx, "../ui/js/libs/jquery.js"); err != nil {
			t.Fatalf("RunScript() error: %v", err)
		}
	}

	got := d.String()
	for _, ref := range []string{`href="../ui/css/ipa.css"`, `href="../ui/favicon.ico"`, `src="../ui/js/libs/jquery.js"`} {
		if n := strings.Count(got, ref); n != 1 {
			t.Errorf("%s appears %d times, want 1", ref, n)
		}
	}
}

func TestInjectIcon_Type(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantType string
	}{
		{"favicon.ico", "image/x-icon"},
		{"logo.PNG", "image/png"},
		{"logo.svg?v=2", "image/svg+xml"},
		{"anim.gif", "image/gif"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			d := New("<head></head>")
			if err := d.InjectIcon(context.Background(), tt.path); err != nil {
				t.Fatalf("InjectIcon() error: %v", err)
			}
			if !strings.Contains(d.String(), `type="`+tt.wantType+`"`) {
				t.Errorf("InjectIcon(%q) = %q, want type %q", tt.path, d.String(), tt.wantType)
			}
		})
	}
}

func TestRunScript_Order(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := New(page)

	scripts := []string{"jquery.js", "jquery.ordered-map.js", "dojo.js"}
	for _, s := range scripts {
		if err := d.RunScript(ctx, s); err != nil {
			t.Fatalf("RunScript(%q) error: %v", s, err)
		}
	}

	got := d.String()
	last := -1
	for _, s := range scripts {
		idx := strings.Index(got, `src="`+s+`"`)
		if idx == -1 {
			t.Fatalf("script %q missing from document", s)
		}
		if idx < last {
			t.Errorf("script %q out of order", s)
		}
		last = idx
	}
	if bodyClose := strings.Index(got, "</body>"); last > bodyClose {
		t.Error("scripts must be placed before </body>")
	}
}

func TestRunScript_NoBody(t *testing.T) {
	t.Parallel()

	d := New("<p>fragment</p>")
	if err := d.RunScript(context.Background(), "a.js"); err != nil {
		t.Fatalf("RunScript() error: %v", err)
	}
	want := `<p>fragment</p><script type="text/javascript" src="a.js"></script>`
	if got := d.String(); got != want {
		t.Errorf("RunScript() = %q, want %q", got, want)
	}
}

func TestInject_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(page)
	if err := d.InjectStyle(ctx, "a.css"); !errors.Is(err, context.Canceled) {
		t.Errorf("InjectStyle() error = %v, want context.Canceled", err)
	}
	if err := d.RunScript(ctx, "a.js"); !errors.Is(err, context.Canceled) {
		t.Errorf("RunScript() error = %v, want context.Canceled", err)
	}
	d.InjectCSS(ctx, "body{}")
	if d.String() != page {
		t.Error("canceled context must leave the document unchanged")
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	d := New("<html><head></head><body></body></html>")
	d.InjectCSS(context.Background(), ".chroma { color: red; }</style><script>")

	want := `<html><head><style>.chroma { color: red; }<\/style><script></style></head><body></body></html>`
	if got := d.String(); got != want {
		t.Errorf("InjectCSS() = %q, want %q", got, want)
	}
}

func TestSetInnerHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		id       string
		fragment string
		expected string
		wantErr  error
	}{
		{
			name:     "fills empty element",
			html:     `<body><div id="msg"></div></body>`,
			id:       "msg",
			fragment: "Hello",
			expected: `<body><div id="msg">Hello</div></body>`,
		},
		{
			name:     "replaces existing content",
			html:     `<div id="msg"><p>old</p> text</div><p>keep</p>`,
			id:       "msg",
			fragment: "<strong>new</strong>",
			expected: `<div id="msg"><strong>new</strong></div><p>keep</p>`,
		},
		{
			name:     "handles nested same-name elements",
			html:     `<div id="msg"><div>inner</div></div><div>after</div>`,
			id:       "msg",
			fragment: "x",
			expected: `<div id="msg">x</div><div>after</div>`,
		},
		{
			name:     "matches id among other attributes",
			html:     `<span class="a" id='msg' data-x="1">old</span>`,
			id:       "msg",
			fragment: "new",
			expected: `<span class="a" id='msg' data-x="1">new</span>`,
		},
		{
			name:     "ignores id text inside scripts",
			html:     `<script>var s = '<div id="msg">';</script><p id="msg">old</p>`,
			id:       "msg",
			fragment: "new",
			expected: `<script>var s = '<div id="msg">';</script><p id="msg">new</p>`,
		},
		{
			name:    "missing element",
			html:    `<div id="other"></div>`,
			id:      "msg",
			wantErr: ErrElementNotFound,
		},
		{
			name:    "unclosed element",
			html:    `<div id="msg">text`,
			id:      "msg",
			wantErr: ErrElementNotFound,
		},
		{
			name:    "void element",
			html:    `<img id="msg" src="a.png">`,
			id:      "msg",
			wantErr: ErrNotContainer,
		},
		{
			name:    "empty id",
			html:    `<div id=""></div>`,
			id:      "",
			wantErr: ErrEmptyElementID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := New(tt.html)
			err := d.SetInnerHTML(context.Background(), tt.id, tt.fragment)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SetInnerHTML() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetInnerHTML() unexpected error: %v", err)
			}
			if got := d.String(); got != tt.expected {
				t.Errorf("SetInnerHTML() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestElementText(t *testing.T) {
	t.Parallel()

	d := New(page)
	if err := d.SetInnerHTML(context.Background(), "ssbrowser-msg", "Configure your browser"); err != nil {
		t.Fatalf("SetInnerHTML() error: %v", err)
	}
	got, err := d.ElementText("ssbrowser-msg")
	if err != nil {
		t.Fatalf("ElementText() error: %v", err)
	}
	if got != "Configure your browser" {
		t.Errorf("ElementText() = %q, want %q", got, "Configure your browser")
	}
}

func TestDocument_ConcurrentEdits(t *testing.T) {
	t.Parallel()

	d := New(page)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = d.InjectStyle(ctx, "shared.css")
		}(i)
	}
	wg.Wait()

	if n := strings.Count(d.String(), `href="shared.css"`); n != 1 {
		t.Errorf("shared.css linked %d times, want 1", n)
	}
}
