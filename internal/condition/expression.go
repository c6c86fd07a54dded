package condition

import (
	"fmt"
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------
// Tokenizer
// -----------------------------------------------------------------------

type tokenKind int

const (
	tokWord   tokenKind = iota // question ref, bare literal or keyword
	tokOp                      // ==, !=, >=, <=, >, <
	tokString                  // "…" or '…'
	tokNumber                  // 42 | -3.14
	tokLBracket
	tokRBracket
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}
		switch ch {
		case '[':
			tokens = append(tokens, token{tokLBracket, "[", i})
			i++
			continue
		case ']':
			tokens = append(tokens, token{tokRBracket, "]", i})
			i++
			continue
		case ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
			continue
		}
		if ch == '=' || ch == '!' || ch == '<' || ch == '>' {
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, expr[i : i+2], i})
				i += 2
				continue
			}
			if ch == '=' || ch == '!' {
				return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
			}
			tokens = append(tokens, token{tokOp, string(ch), i})
			i++
			continue
		}
		if ch == '"' || ch == '\'' {
			quote := ch
			j := i + 1
			for j < len(expr) && expr[j] != quote {
				if expr[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(expr) {
				return nil, fmt.Errorf("unterminated string starting at position %d", i)
			}
			inner := expr[i+1 : j]
			inner = strings.ReplaceAll(inner, `\"`, `"`)
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `\\`, `\`)
			tokens = append(tokens, token{tokString, inner, i})
			i = j + 1
			continue
		}
		if unicode.IsDigit(rune(ch)) || (ch == '-' && i+1 < len(expr) && unicode.IsDigit(rune(expr[i+1]))) {
			j := i + 1
			for j < len(expr) && (unicode.IsDigit(rune(expr[j])) || expr[j] == '.') {
				j++
			}
			// A digit run followed by letters is a uuid ref, 2nd or 1e3.
			if j < len(expr) && isWordChar(expr[j]) {
				for j < len(expr) && isWordChar(expr[j]) {
					j++
				}
				tokens = append(tokens, token{tokWord, expr[i:j], i})
				i = j
				continue
			}
			tokens = append(tokens, token{tokNumber, expr[i:j], i})
			i = j
			continue
		}
		if isWordChar(ch) {
			j := i
			for j < len(expr) && isWordChar(expr[j]) {
				j++
			}
			tokens = append(tokens, token{tokWord, expr[i:j], i})
			i = j
			continue
		}
		return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
	}
	tokens = append(tokens, token{tokEOF, "", len(expr)})
	return tokens, nil
}

// Question refs are usually slugs like "q_age" or "household.size" or uuids.
func isWordChar(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' || ch == '.' || ch == '-'
}

// -----------------------------------------------------------------------
// Parser
// -----------------------------------------------------------------------

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) consume() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(kind tokenKind, val string) error {
	t := p.peek()
	if t.kind != kind {
		return fmt.Errorf("expected %q but got %q at position %d", val, t.val, t.pos)
	}
	p.consume()
	return nil
}

// Parse compiles a route expression into a Condition.
//
//	expr    = "always" | ref operator operand
//	operator = "==" | "!=" | ">" | "<" | ">=" | "<=" | "in" | "not" "in"
//	operand = literal | "[" [ literal { "," literal } ] "]"
func Parse(expr string) (Condition, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	if t := p.peek(); t.kind == tokWord && strings.EqualFold(t.val, "always") {
		p.consume()
		if p.peek().kind != tokEOF {
			return nil, fmt.Errorf("unexpected token %q after expression", p.peek().val)
		}
		return Direct{}, nil
	}

	ref := p.peek()
	if ref.kind != tokWord {
		return nil, fmt.Errorf("expected question reference, got %q", ref.val)
	}
	p.consume()

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	val, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q after expression", p.peek().val)
	}
	if (op == OpIn || op == OpNotIn) && !val.IsList() {
		val = List(val.Scalar())
	}
	return &Comparison{QuestionRef: ref.val, Op: op, Value: val}, nil
}

func (p *parser) parseOperator() (Operator, error) {
	t := p.peek()
	switch {
	case t.kind == tokOp:
		p.consume()
		return ParseOperator(t.val)
	case t.kind == tokWord && strings.EqualFold(t.val, "in"):
		p.consume()
		return OpIn, nil
	case t.kind == tokWord && strings.EqualFold(t.val, "not"):
		p.consume()
		next := p.peek()
		if next.kind != tokWord || !strings.EqualFold(next.val, "in") {
			return "", fmt.Errorf("expected \"in\" after \"not\", got %q", next.val)
		}
		p.consume()
		return OpNotIn, nil
	}
	return "", fmt.Errorf("expected comparison operator, got %q", t.val)
}

func (p *parser) parseOperand() (Value, error) {
	if p.peek().kind != tokLBracket {
		s, err := p.parseLiteral()
		if err != nil {
			return Value{}, err
		}
		return Scalar(s), nil
	}
	p.consume()
	var items []string
	if p.peek().kind == tokRBracket {
		p.consume()
		return List(), nil
	}
	for {
		s, err := p.parseLiteral()
		if err != nil {
			return Value{}, err
		}
		items = append(items, s)
		if p.peek().kind == tokComma {
			p.consume()
			continue
		}
		if err := p.expect(tokRBracket, "]"); err != nil {
			return Value{}, err
		}
		return List(items...), nil
	}
}

// literal = string | number | bare word
func (p *parser) parseLiteral() (string, error) {
	t := p.peek()
	switch t.kind {
	case tokString, tokNumber, tokWord:
		p.consume()
		return t.val, nil
	}
	return "", fmt.Errorf("expected literal, got %q", t.val)
}
