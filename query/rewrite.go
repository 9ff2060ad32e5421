package query

import (
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/teranos/graphscope/errors"
)

// keywords maps the word operators users type to HCL operators
var keywords = map[string]string{
	"and":   "&&",
	"or":    "||",
	"not":   "!",
	"True":  "true",
	"False": "false",
}

const aliasPrefix = "quoted__"

// quotePass rewrites the parts of the filter language HCL has no syntax for:
// 'single quoted' strings become "double quoted", and `backtick quoted`
// attribute names become generated identifiers recorded in aliases.
func quotePass(src string) (string, map[string]string, error) {
	var out strings.Builder
	aliases := make(map[string]string)

	inDouble := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inDouble:
			out.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				out.WriteByte(src[i])
			} else if c == '"' {
				inDouble = false
			}

		case c == '"':
			inDouble = true
			out.WriteByte(c)

		case c == '\'':
			end := strings.IndexByte(src[i+1:], '\'')
			if end < 0 {
				return "", nil, errors.Newf("unterminated string starting at column %d", i+1)
			}
			out.WriteString(hclQuote(src[i+1 : i+1+end]))
			i += end + 1

		case c == '`':
			end := strings.IndexByte(src[i+1:], '`')
			if end < 0 {
				return "", nil, errors.Newf("unterminated attribute name starting at column %d", i+1)
			}
			name := src[i+1 : i+1+end]
			alias := aliasPrefix + strconv.Itoa(len(aliases))
			aliases[alias] = name
			out.WriteString(alias)
			i += end + 1

		default:
			out.WriteByte(c)
		}
	}
	if inDouble {
		return "", nil, errors.New("unterminated string")
	}
	return out.String(), aliases, nil
}

// hclQuote renders s as an HCL string literal with no interpolation
func hclQuote(s string) string {
	s = strconv.Quote(s)
	s = strings.ReplaceAll(s, "${", "$${")
	return strings.ReplaceAll(s, "%{", "%%{")
}

// keywordPass replaces word operators with their HCL symbols. It works on the
// token stream so words inside string literals are left alone.
//
// HCL's ! binds tighter than comparisons while the word "not" binds looser, so
// "not" becomes "!(" and the paren closes before the next and/or at the same
// nesting depth, before the bracket that encloses it, or at the end.
func keywordPass(src string) (string, error) {
	tokens, diags := hclsyntax.LexExpression([]byte(src), "filter", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return "", diagnosticsError(diags)
	}

	var out strings.Builder
	last := 0
	depth := 0
	var nots []int // depth of every unclosed "not"

	emitUpTo := func(pos int) {
		out.WriteString(src[last:pos])
		last = pos
	}
	closeNots := func(pos int) {
		if len(nots) == 0 || nots[len(nots)-1] < depth {
			emitUpTo(pos)
			return
		}
		emitUpTo(last + len(strings.TrimRight(src[last:pos], " \t\r\n")))
		for len(nots) > 0 && nots[len(nots)-1] >= depth {
			out.WriteByte(')')
			nots = nots[:len(nots)-1]
		}
		emitUpTo(pos)
	}

	for _, tok := range tokens {
		start := tok.Range.Start.Byte
		switch tok.Type {
		case hclsyntax.TokenOParen, hclsyntax.TokenOBrack, hclsyntax.TokenOBrace,
			hclsyntax.TokenTemplateInterp, hclsyntax.TokenTemplateControl:
			depth++
			continue
		case hclsyntax.TokenCParen, hclsyntax.TokenCBrack, hclsyntax.TokenCBrace,
			hclsyntax.TokenTemplateSeqEnd:
			closeNots(start)
			depth--
			continue
		case hclsyntax.TokenAnd, hclsyntax.TokenOr, hclsyntax.TokenQuestion, hclsyntax.TokenColon:
			closeNots(start)
			continue
		case hclsyntax.TokenIdent:
		default:
			continue
		}

		word := string(tok.Bytes)
		repl, ok := keywords[word]
		if !ok {
			continue
		}
		switch word {
		case "and", "or":
			closeNots(start)
		default:
			emitUpTo(start)
		}
		out.WriteString(repl)
		last = tok.Range.End.Byte
		if word == "not" {
			out.WriteByte('(')
			nots = append(nots, depth)
			last += len(src[last:]) - len(strings.TrimLeft(src[last:], " \t\r\n"))
		}
	}
	closeNots(len(src))
	return out.String(), nil
}

// diagnosticsError condenses HCL diagnostics into a single error message
func diagnosticsError(diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail != "" {
			return errors.Newf("%s: %s", d.Summary, d.Detail)
		}
		return errors.New(d.Summary)
	}
	return errors.New(diags.Error())
}
