// Package colorize applies chroma syntax highlighting to the
// pretty-printed mnemonic text of a lifted instruction block.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// noColorEnv disables highlighting entirely, e.g. when piping to a file.
const noColorEnv = "GADGETLIFT_NO_COLOR"

// getAssemblyLexer returns an appropriate assembly-like lexer with
// fallbacks; IL pretty text ("<mnemonic> <operands>") reads close enough
// to a generic assembly line for chroma's own lexers to tokenise it
// sensibly.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"armasm", "gas", "GAS", "Gas", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getBlockStyle returns the IL block style with fallbacks.
func getBlockStyle() *chroma.Style {
	candidates := []string{"il-block-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter.
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ILText highlights one ILBlock's pretty-printed mnemonic text
// ("<mnemonic> <operands>"). It returns the text unchanged, without
// error, whenever colors are disabled or no suitable lexer is available.
func ILText(text string) (string, error) {
	if os.Getenv(noColorEnv) != "" {
		return text, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return text, nil
	}

	style := getBlockStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return text, err
	}
	return buf.String(), nil
}
