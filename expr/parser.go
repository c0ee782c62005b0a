package expr

import (
	"fmt"
	"sort"
	"strconv"
)

// Limits on accepted source.
const (
	MaxSourceLength = 4096
	MaxDepth        = 64
)

// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("^" | "**") unary ]
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
//
// "^" is right-associative and binds tighter than unary minus, so -2^2 = -4.

// Parser builds an expression tree from tokens.
type Parser struct {
	lexer *Lexer
	token Token // current token
	depth int
	vars  map[string]struct{}
}

// Parse compiles src. The returned Expr is immutable and safe for concurrent Eval.
func Parse(src string) (*Expr, error) {
	if len(src) > MaxSourceLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(src), MaxSourceLength)
	}
	p := &Parser{lexer: NewLexer(src), vars: make(map[string]struct{})}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.token.Type != TOKEN_EOF {
		return nil, p.unexpected("end of input")
	}

	vars := make([]string, 0, len(p.vars))
	for name := range p.vars {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return &Expr{src: src, root: root, vars: vars}, nil
}

func (p *Parser) nextToken() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.token = tok
	return nil
}

func (p *Parser) unexpected(expected string) error {
	return &SyntaxError{
		Offset:  p.token.Offset,
		Message: fmt.Sprintf(errUnexpectedToken, p.token.Type, p.token.Literal, expected),
	}
}

func (p *Parser) expect(t TokenType) error {
	if p.token.Type != t {
		return p.unexpected(t.String())
	}
	return p.nextToken()
}

func (p *Parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.token.Type == TOKEN_PLUS || p.token.Type == TOKEN_MINUS {
		op := p.token.Type
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.token.Type == TOKEN_STAR || p.token.Type == TOKEN_SLASH || p.token.Type == TOKEN_PERCENT {
		op := p.token.Type
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseUnary is the recursion point of every nested construct, so the depth
// limit is enforced here.
func (p *Parser) parseUnary() (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, fmt.Errorf("%w: limit %d at offset %d", ErrTooDeep, MaxDepth, p.token.Offset)
	}

	switch p.token.Type {
	case TOKEN_MINUS, TOKEN_PLUS:
		negate := p.token.Type == TOKEN_MINUS
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !negate {
			return operand, nil
		}
		return &negNode{x: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.token.Type != TOKEN_CARET {
		return base, nil
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: TOKEN_CARET, left: base, right: exp}, nil
}

func (p *Parser) parsePrimary() (node, error) {
	tok := p.token
	switch tok.Type {
	case TOKEN_NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &SyntaxError{Offset: tok.Offset, Message: fmt.Sprintf(errInvalidNumber, tok.Literal)}
		}
		return numberNode(v), p.nextToken()

	case TOKEN_LPAREN:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return inner, p.expect(TOKEN_RPAREN)

	case TOKEN_IDENT:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if p.token.Type == TOKEN_LPAREN {
			return p.parseCall(tok)
		}
		if v, ok := constants[tok.Literal]; ok {
			return numberNode(v), nil
		}
		p.vars[tok.Literal] = struct{}{}
		return varNode(tok.Literal), nil
	}
	return nil, p.unexpected("number, identifier or '('")
}

func (p *Parser) parseCall(name Token) (node, error) {
	fn, ok := functions[name.Literal]
	if !ok {
		return nil, fmt.Errorf("%w %q at offset %d", ErrUnknownFunction, name.Literal, name.Offset)
	}
	if err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}

	var args []node
	if p.token.Type != TOKEN_RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.token.Type != TOKEN_COMMA {
				break
			}
			if err := p.nextToken(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}

	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrArity, name.Literal, fn.arity(), len(args))
	}
	return &callNode{name: name.Literal, fn: fn, args: args}, nil
}
