package ast

// Children returns the direct child expressions of n that the façade's
// variables() walk and the debug source-rebuilder need to traverse. It
// covers every node kind that can contain sub-expressions; leaf literals
// return nil.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *ArrayLit:
		out := make([]Node, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = e
		}
		return out
	case *MapLit:
		out := make([]Node, len(v.Entries))
		for i, e := range v.Entries {
			out[i] = e
		}
		return out
	case *MapEntry:
		return []Node{v.Key, v.Value}
	case *Reference:
		out := make([]Node, len(v.Parts))
		for i, p := range v.Parts {
			out[i] = p
		}
		return out
	case *ReferenceExpression:
		return []Node{v.Inner}
	case *ArrayAccess:
		out := []Node{v.Target}
		for _, idx := range v.Indices {
			out = append(out, idx)
		}
		return out
	case *BinaryExpr:
		return []Node{v.Left, v.Right}
	case *UnaryExpr:
		return []Node{v.Operand}
	case *Script:
		out := make([]Node, len(v.Statements))
		for i, s := range v.Statements {
			out[i] = s
		}
		return out
	case *Block:
		out := make([]Node, len(v.Statements))
		for i, s := range v.Statements {
			out[i] = s
		}
		return out
	case *ExprStatement:
		return []Node{v.Expr}
	case *If:
		out := []Node{v.Cond, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *While:
		return []Node{v.Cond, v.Body}
	case *Foreach:
		return []Node{v.Var, v.Iterable, v.Body}
	case *Return:
		if v.Expr == nil {
			return nil
		}
		return []Node{v.Expr}
	case *Assign:
		return []Node{v.Target, v.Value}
	case *Ternary:
		out := []Node{v.Cond}
		if v.When != nil {
			out = append(out, v.When)
		}
		out = append(out, v.Else)
		return out
	case *MethodCall:
		out := []Node{}
		if v.Target != nil {
			out = append(out, v.Target)
		}
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *FunctionCall:
		out := make([]Node, len(v.Args))
		for i, a := range v.Args {
			out[i] = a
		}
		return out
	case *ConstructorCall:
		out := []Node{v.Class}
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *SizeFunction:
		return []Node{v.Arg}
	case *SizeMethod:
		return []Node{v.Target}
	case *EmptyFunction:
		return []Node{v.Arg}
	default:
		return nil
	}
}
