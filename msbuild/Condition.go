package msbuild

import (
	"fmt"
	"strings"
	"unicode"
)

/***************************************
 * MSBuild conditions, like "'$(Configuration)|$(Platform)'=='Debug|Win32' and Exists('foo.props')"
 ***************************************/

type ConditionContext interface {
	Expand(template string) (string, error)
	Exists(path string) bool
}

type conditionTokenKind byte

const (
	TOKEN_EOF conditionTokenKind = iota
	TOKEN_STRING
	TOKEN_WORD
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_COMMA
	TOKEN_NOT
	TOKEN_EQUAL
	TOKEN_NOT_EQUAL
)

type conditionToken struct {
	Kind  conditionTokenKind
	Value string
}

func tokenizeCondition(in string) (tokens []conditionToken, err error) {
	for i := 0; i < len(in); {
		ch := in[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			i++
		case ch == '\'':
			end := strings.IndexByte(in[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated string in condition %q", in)
			}
			tokens = append(tokens, conditionToken{Kind: TOKEN_STRING, Value: in[i+1 : i+1+end]})
			i += end + 2
		case ch == '(':
			tokens = append(tokens, conditionToken{Kind: TOKEN_LPAREN})
			i++
		case ch == ')':
			tokens = append(tokens, conditionToken{Kind: TOKEN_RPAREN})
			i++
		case ch == ',':
			tokens = append(tokens, conditionToken{Kind: TOKEN_COMMA})
			i++
		case strings.HasPrefix(in[i:], "=="):
			tokens = append(tokens, conditionToken{Kind: TOKEN_EQUAL})
			i += 2
		case strings.HasPrefix(in[i:], "!="):
			tokens = append(tokens, conditionToken{Kind: TOKEN_NOT_EQUAL})
			i += 2
		case ch == '!':
			tokens = append(tokens, conditionToken{Kind: TOKEN_NOT})
			i++
		case ch == '$' && strings.HasPrefix(in[i:], "$("):
			end := strings.IndexByte(in[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("unterminated property in condition %q", in)
			}
			tokens = append(tokens, conditionToken{Kind: TOKEN_WORD, Value: in[i : i+end+1]})
			i += end + 1
		default:
			start := i
			for i < len(in) && (unicode.IsLetter(rune(in[i])) || unicode.IsDigit(rune(in[i])) || in[i] == '_' || in[i] == '.') {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("unexpected character %q in condition %q", ch, in)
			}
			tokens = append(tokens, conditionToken{Kind: TOKEN_WORD, Value: in[start:i]})
		}
	}
	return append(tokens, conditionToken{Kind: TOKEN_EOF}), nil
}

type conditionParser struct {
	input   string
	tokens  []conditionToken
	context ConditionContext
}

func (x *conditionParser) peek() conditionToken { return x.tokens[0] }
func (x *conditionParser) next() conditionToken {
	token := x.tokens[0]
	if token.Kind != TOKEN_EOF {
		x.tokens = x.tokens[1:]
	}
	return token
}
func (x *conditionParser) expect(kind conditionTokenKind) error {
	if token := x.next(); token.Kind != kind {
		return fmt.Errorf("unexpected token %q in condition %q", token.Value, x.input)
	}
	return nil
}
func (x *conditionParser) isKeyword(keyword string) bool {
	token := x.peek()
	return token.Kind == TOKEN_WORD && strings.EqualFold(token.Value, keyword)
}

func (x *conditionParser) parseOr() (bool, error) {
	result, err := x.parseAnd()
	for err == nil && x.isKeyword("or") {
		x.next()
		var rhs bool
		rhs, err = x.parseAnd()
		result = result || rhs
	}
	return result, err
}
func (x *conditionParser) parseAnd() (bool, error) {
	result, err := x.parseUnary()
	for err == nil && x.isKeyword("and") {
		x.next()
		var rhs bool
		rhs, err = x.parseUnary()
		result = result && rhs
	}
	return result, err
}
func (x *conditionParser) parseUnary() (bool, error) {
	if x.peek().Kind == TOKEN_NOT {
		x.next()
		result, err := x.parseUnary()
		return !result, err
	}
	return x.parsePrimary()
}
func (x *conditionParser) parsePrimary() (bool, error) {
	if x.peek().Kind == TOKEN_LPAREN {
		x.next()
		result, err := x.parseOr()
		if err != nil {
			return false, err
		}
		return result, x.expect(TOKEN_RPAREN)
	}

	lhs, err := x.parseOperand()
	if err != nil {
		return false, err
	}

	switch x.peek().Kind {
	case TOKEN_EQUAL, TOKEN_NOT_EQUAL:
		op := x.next()
		rhs, err := x.parseOperand()
		if err != nil {
			return false, err
		}
		equal := strings.EqualFold(lhs, rhs)
		if op.Kind == TOKEN_NOT_EQUAL {
			return !equal, nil
		}
		return equal, nil
	default:
		switch strings.ToLower(lhs) {
		case "true", "on", "yes":
			return true, nil
		case "false", "off", "no", "":
			return false, nil
		default:
			return false, fmt.Errorf("expected a boolean in condition %q, got %q", x.input, lhs)
		}
	}
}
func (x *conditionParser) parseOperand() (string, error) {
	token := x.next()
	switch token.Kind {
	case TOKEN_STRING:
		return x.context.Expand(token.Value)
	case TOKEN_WORD:
		if x.peek().Kind == TOKEN_LPAREN {
			return x.parseFunction(token.Value)
		}
		return x.context.Expand(token.Value)
	default:
		return "", fmt.Errorf("unexpected token %q in condition %q", token.Value, x.input)
	}
}
func (x *conditionParser) parseFunction(name string) (string, error) {
	if err := x.expect(TOKEN_LPAREN); err != nil {
		return "", err
	}
	arg, err := x.parseOperand()
	if err != nil {
		return "", err
	}
	if err := x.expect(TOKEN_RPAREN); err != nil {
		return "", err
	}

	var result bool
	switch strings.ToLower(name) {
	case "exists":
		result = len(arg) > 0 && x.context.Exists(arg)
	case "hastrailingslash":
		result = strings.HasSuffix(arg, `\`) || strings.HasSuffix(arg, "/")
	default:
		return "", fmt.Errorf("unsupported function %s() in condition %q", name, x.input)
	}
	if result {
		return "true", nil
	}
	return "false", nil
}

// EvaluateCondition returns true for an empty condition.
func EvaluateCondition(condition string, context ConditionContext) (bool, error) {
	if len(strings.TrimSpace(condition)) == 0 {
		return true, nil
	}
	tokens, err := tokenizeCondition(condition)
	if err != nil {
		return false, err
	}

	parser := conditionParser{input: condition, tokens: tokens, context: context}
	result, err := parser.parseOr()
	if err == nil && parser.peek().Kind != TOKEN_EOF {
		err = fmt.Errorf("unexpected token %q at the end of condition %q", parser.peek().Value, condition)
	}
	return result, err
}

// ConfigurationCondition is the condition written for configuration specific elements.
func ConfigurationCondition(configuration string) string {
	return fmt.Sprintf("'$(Configuration)|$(Platform)'=='%s'", configuration)
}
