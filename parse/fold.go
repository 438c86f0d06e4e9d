package parse

import (
	"fmt"

	"github.com/hkoba/cfront/cpp"
)

// Fold evaluates an integer constant expression, such as an
// enumerator value or a bitfield width. Only forms valid in those
// positions fold; anything else is an error.
func Fold(n Node) (int64, error) {
	switch n := n.(type) {
	case *Constant:
		switch n.Kind {
		case cpp.INT_CONSTANT, cpp.CHAR_CONSTANT, cpp.WCHAR_CONSTANT:
			return n.Val, nil
		case cpp.UINT_CONSTANT:
			return int64(n.UVal), nil
		}
		return 0, fmt.Errorf("not an integer constant")
	case *Unop:
		v, err := Fold(n.Operand)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '-':
			return -v, nil
		case '+':
			return v, nil
		case '~':
			return ^v, nil
		case '!':
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("operator %s is not constant", n.Op)
	case *Binop:
		l, err := Fold(n.L)
		if err != nil {
			return 0, err
		}
		r, err := Fold(n.R)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			return l + r, nil
		case '-':
			return l - r, nil
		case '*':
			return l * r, nil
		case '/':
			if r == 0 {
				return 0, fmt.Errorf("division by zero in constant expression")
			}
			return l / r, nil
		case '%':
			if r == 0 {
				return 0, fmt.Errorf("modulo by zero in constant expression")
			}
			return l % r, nil
		case '&':
			return l & r, nil
		case '|':
			return l | r, nil
		case '^':
			return l ^ r, nil
		case cpp.SHL:
			return l << uint64(r), nil
		case cpp.SHR:
			return l >> uint64(r), nil
		case cpp.EQL:
			return b2i(l == r), nil
		case cpp.NEQ:
			return b2i(l != r), nil
		case '<':
			return b2i(l < r), nil
		case '>':
			return b2i(l > r), nil
		case cpp.LEQ:
			return b2i(l <= r), nil
		case cpp.GEQ:
			return b2i(l >= r), nil
		case cpp.LAND:
			return b2i(l != 0 && r != 0), nil
		case cpp.LOR:
			return b2i(l != 0 || r != 0), nil
		}
		return 0, fmt.Errorf("operator %s is not constant", n.Op)
	case *Cond:
		t, err := Fold(n.Test)
		if err != nil {
			return 0, err
		}
		if t != 0 {
			if n.L == nil {
				return t, nil
			}
			return Fold(n.L)
		}
		return Fold(n.R)
	case *Cast:
		// Integer casts in constant expressions fold through; width
		// truncation is left to the type layer.
		return Fold(n.Operand)
	}
	return 0, fmt.Errorf("not a valid constant expression")
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
