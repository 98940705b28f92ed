// Package highlight colors JSON and other source text for terminal output.
package highlight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/term"
)

// DefaultStyle is the chroma style used when none is named.
const DefaultStyle = "dracula"

// Options controls Write.
type Options struct {
	// Language names the lexer; empty means JSON.
	Language string
	// Style names the chroma style; empty means DefaultStyle.
	Style string
	// Color turns on ANSI escapes. Plain text is written otherwise.
	Color bool
}

// Write indents JSON input and copies it to w, highlighted when
// opts.Color is set. Non-JSON languages are written as given.
func Write(w io.Writer, src []byte, opts Options) error {
	lang := opts.Language
	if lang == "" {
		lang = "json"
	}
	if lang == "json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, src, "", "  "); err != nil {
			return fmt.Errorf("indent: %w", err)
		}
		buf.WriteByte('\n')
		src = buf.Bytes()
	}
	if !opts.Color {
		_, err := w.Write(src)
		return err
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(opts.Style)
	if opts.Style == "" {
		style = styles.Get(DefaultStyle)
	}
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(src))
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return formatter.Format(w, style, iterator)
}

// ShouldColor reports whether w is a terminal that accepts color. NO_COLOR
// in the environment turns color off.
func ShouldColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
