package mir

import (
	"fmt"
	"io"
	"strings"

	"minimir/internal/layout"
)

// DumpProgram writes a human-readable rendering of p to w. Composite types
// are listed first as T0, T1, ... and referenced by index from the functions.
func DumpProgram(w io.Writer, p *Program, target layout.Target) error {
	if p == nil {
		_, err := io.WriteString(w, "<no program>\n")
		return err
	}
	pr := &printer{ct: &comptypes{}}
	for _, fn := range p.FunctionNames() {
		f := p.Functions[fn]
		pr.function(fn, &f, fn == p.Start)
	}
	head := formatComptypes(pr.ct, layout.New(target))
	if _, err := io.WriteString(w, head); err != nil {
		return err
	}
	_, err := io.WriteString(w, pr.sb.String())
	return err
}

type printer struct {
	sb strings.Builder
	ct *comptypes
}

func (pr *printer) printf(format string, args ...any) {
	fmt.Fprintf(&pr.sb, format, args...)
}

func (pr *printer) function(name FnName, f *Function, start bool) {
	if start {
		pr.printf("[start]\n")
	}
	args := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		args = append(args, pr.localDecl(f, a))
	}
	ret := "()"
	if f.Ret != NoLocalName {
		ret = pr.localDecl(f, f.Ret)
	}
	conv := ""
	if f.Conv != ConvRust {
		conv = fmt.Sprintf("extern %q ", f.Conv.String())
	}
	pr.printf("%sfn %s(%s) -> %s {\n", conv, name, strings.Join(args, ", "), ret)

	for i := range f.Locals {
		l := LocalName(i)
		if l == f.Ret || isArg(f, l) {
			continue
		}
		pr.printf("  let %s;\n", pr.localDecl(f, l))
	}

	for _, bb := range f.BlockNames() {
		b := f.Blocks[bb]
		pr.block(bb, &b, bb == f.Start)
	}
	pr.printf("}\n\n")
}

func isArg(f *Function, l LocalName) bool {
	for _, a := range f.Args {
		if a == l {
			return true
		}
	}
	return false
}

func (pr *printer) localDecl(f *Function, l LocalName) string {
	if !f.HasLocal(l) {
		return l.String() + ": <undeclared>"
	}
	return fmt.Sprintf("%s: %s", l, formatType(f.Locals[l], pr.ct))
}

func (pr *printer) block(bb BbName, b *BasicBlock, start bool) {
	pr.printf("\n")
	if start {
		pr.printf("  [start]\n")
	}
	if b.Kind != BbRegular {
		pr.printf("  [%s]\n", b.Kind)
	}
	pr.printf("  %s:\n", bb)
	for i := range b.Statements {
		pr.printf("    %s;\n", pr.statement(&b.Statements[i]))
	}
	pr.printf("    %s;\n", pr.terminator(&b.Term))
}

func (pr *printer) statement(s *Statement) string {
	switch s.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", pr.place(&s.Assign.Dst), pr.value(&s.Assign.Src))
	case StmtPlaceMention:
		return fmt.Sprintf("let _ = %s", pr.place(&s.Place))
	case StmtSetDiscriminant:
		return fmt.Sprintf("discriminant(%s) = %d", pr.place(&s.SetDiscriminant.Dst), s.SetDiscriminant.Value)
	case StmtValidate:
		if s.FnEntry {
			return fmt.Sprintf("validate(%s, fn_entry)", pr.place(&s.Place))
		}
		return fmt.Sprintf("validate(%s)", pr.place(&s.Place))
	case StmtDeinit:
		return fmt.Sprintf("deinit(%s)", pr.place(&s.Place))
	case StmtStorageLive:
		return fmt.Sprintf("storage_live(%s)", s.Local)
	case StmtStorageDead:
		return fmt.Sprintf("storage_dead(%s)", s.Local)
	default:
		return "<invalid statement>"
	}
}

func (pr *printer) place(p *PlaceExpr) string {
	if p == nil {
		return "<missing>"
	}
	switch p.Kind {
	case PlaceLocal:
		return p.Local.String()
	case PlaceDeref:
		return fmt.Sprintf("deref<%s>(%s)", formatType(p.Deref.Type, pr.ct), pr.valuePtr(p.Deref.Operand))
	case PlaceField:
		return fmt.Sprintf("%s.%d", pr.place(p.Field.Root), p.Field.Field)
	case PlaceIndex:
		return fmt.Sprintf("%s[%s]", pr.place(p.Index.Root), pr.valuePtr(p.Index.Index))
	case PlaceDowncast:
		return fmt.Sprintf("(%s as variant %d)", pr.place(p.Downcast.Root), p.Downcast.Discriminant)
	default:
		return "<invalid place>"
	}
}

func (pr *printer) valuePtr(v *ValueExpr) string {
	if v == nil {
		return "<missing>"
	}
	return pr.value(v)
}

func (pr *printer) value(v *ValueExpr) string {
	switch v.Kind {
	case ValueConstant:
		return pr.constant(&v.Constant)
	case ValueTuple:
		elems := make([]string, 0, len(v.Tuple.Elems))
		for i := range v.Tuple.Elems {
			elems = append(elems, pr.value(&v.Tuple.Elems[i]))
		}
		return fmt.Sprintf("%s(%s)", formatType(v.Tuple.Type, pr.ct), strings.Join(elems, ", "))
	case ValueUnion:
		return fmt.Sprintf("%s { f%d: %s }", formatType(v.Union.Type, pr.ct), v.Union.Field, pr.valuePtr(v.Union.Expr))
	case ValueVariant:
		return fmt.Sprintf("%s::%d(%s)", formatType(v.Variant.Type, pr.ct), v.Variant.Discriminant, pr.valuePtr(v.Variant.Data))
	case ValueGetDiscriminant:
		return fmt.Sprintf("discriminant(%s)", pr.place(v.Place))
	case ValueLoad:
		return "load(" + pr.place(v.Place) + ")"
	case ValueAddrOf:
		return fmt.Sprintf("&raw<%s> %s", formatPtrType(v.AddrOf.Ptr), pr.place(v.AddrOf.Target))
	case ValueUnOp:
		return pr.unOp(v.UnOp.Op, pr.valuePtr(v.UnOp.Operand))
	case ValueBinOp:
		return pr.binOp(v.BinOp.Op, pr.valuePtr(v.BinOp.Left), pr.valuePtr(v.BinOp.Right))
	default:
		return "<invalid value>"
	}
}

func (pr *printer) constant(c *ConstantExpr) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d_%s", c.Int, formatType(c.Type, pr.ct))
	case ConstBool:
		return fmt.Sprintf("const %t", c.Bool)
	case ConstFnPointer:
		return "fn_ptr(" + c.Fn.String() + ")"
	case ConstPointerWithoutProvenance:
		return fmt.Sprintf("addr(%d)_%s", c.Int, formatType(c.Type, pr.ct))
	default:
		return "<invalid constant>"
	}
}

var (
	intBinOpSymbols = [...]string{
		IntAdd: "+", IntSub: "-", IntMul: "*", IntDiv: "/", IntRem: "%",
		IntShl: "<<", IntShr: ">>", IntBitAnd: "&", IntBitOr: "|", IntBitXor: "^",
	}
	relOpSymbols  = [...]string{RelLt: "<", RelGt: ">", RelLe: "<=", RelGe: ">=", RelEq: "==", RelNe: "!="}
	boolOpSymbols = [...]string{BoolAnd: "&", BoolOr: "|", BoolXor: "^"}
)

func symbol(table []string, i int) string {
	if i < len(table) {
		return table[i]
	}
	return "?"
}

func (pr *printer) unOp(op UnOp, operand string) string {
	switch op.Kind {
	case UnOpInt:
		if op.Int == IntNeg {
			return "-(" + operand + ")"
		}
		return "!(" + operand + ")"
	case UnOpBool:
		return "!(" + operand + ")"
	case UnOpCast:
		switch op.Cast.Kind {
		case CastIntToInt, CastBoolToInt:
			return fmt.Sprintf("%s as %s", operand, op.Cast.Int)
		default:
			return fmt.Sprintf("transmute<%s>(%s)", formatType(op.Cast.Type, pr.ct), operand)
		}
	case UnOpGetThinPointer:
		return "get_thin_pointer(" + operand + ")"
	case UnOpGetMetadata:
		return "get_metadata(" + operand + ")"
	case UnOpComputeSize:
		return fmt.Sprintf("size_of_val<%s>(%s)", formatType(op.Type, pr.ct), operand)
	case UnOpComputeAlign:
		return fmt.Sprintf("align_of_val<%s>(%s)", formatType(op.Type, pr.ct), operand)
	default:
		return "<invalid unop>"
	}
}

func (pr *printer) binOp(op BinOp, l, r string) string {
	switch op.Kind {
	case BinOpInt:
		return fmt.Sprintf("(%s %s %s)", l, symbol(intBinOpSymbols[:], int(op.Int)), r)
	case BinOpRel:
		return fmt.Sprintf("(%s %s %s)", l, symbol(relOpSymbols[:], int(op.Rel)), r)
	case BinOpBool:
		return fmt.Sprintf("(%s %s %s)", l, symbol(boolOpSymbols[:], int(op.Bool)), r)
	case BinOpPtrOffset:
		if op.InBounds {
			return fmt.Sprintf("offset_inbounds(%s, %s)", l, r)
		}
		return fmt.Sprintf("offset_wrapping(%s, %s)", l, r)
	case BinOpConstructWidePointer:
		return fmt.Sprintf("construct_wide_pointer<%s>(%s, %s)", formatPtrType(op.Ptr), l, r)
	default:
		return "<invalid binop>"
	}
}

func (pr *printer) terminator(t *Terminator) string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermGoto:
		return "goto -> " + t.Goto.Target.String()
	case TermSwitch:
		cases := make([]string, 0, len(t.Switch.Cases)+1)
		for _, v := range t.Switch.SortedCases() {
			cases = append(cases, fmt.Sprintf("%d -> %s", v, t.Switch.Cases[v]))
		}
		cases = append(cases, "otherwise -> "+t.Switch.Fallback.String())
		return fmt.Sprintf("switch(%s) -> [%s]", pr.value(&t.Switch.Value), strings.Join(cases, ", "))
	case TermUnreachable:
		return "unreachable"
	case TermIntrinsic:
		in := &t.Intrinsic
		args := make([]string, 0, len(in.Args))
		for i := range in.Args {
			args = append(args, pr.value(&in.Args[i]))
		}
		name := in.Op.Kind.String()
		if in.Op.Kind == IntrinsicAtomicFetchAndOp {
			name += "<" + symbol(intBinOpSymbols[:], int(in.Op.FetchOp)) + ">"
		}
		s := fmt.Sprintf("%s = %s(%s)", pr.place(&in.Ret), name, strings.Join(args, ", "))
		if in.Next != NoBbName {
			s += " -> " + in.Next.String()
		}
		return s
	case TermCall:
		c := &t.Call
		args := make([]string, 0, len(c.Args))
		for i := range c.Args {
			args = append(args, pr.argument(&c.Args[i]))
		}
		s := fmt.Sprintf("%s = call(%s)(%s)", pr.place(&c.Ret), pr.value(&c.Callee), strings.Join(args, ", "))
		if c.Conv != ConvRust {
			s += fmt.Sprintf(" abi(%s)", c.Conv)
		}
		if c.Next != NoBbName {
			s += " -> " + c.Next.String()
		}
		if c.Unwind != NoBbName {
			s += " unwind -> " + c.Unwind.String()
		}
		return s
	case TermReturn:
		return "return"
	case TermStartUnwind:
		return fmt.Sprintf("start_unwind(%s) -> %s", pr.value(&t.StartUnwind.Payload), t.StartUnwind.Cleanup)
	case TermStopUnwind:
		return "stop_unwind -> " + t.StopUnwind.Next.String()
	case TermResumeUnwind:
		return "resume_unwind"
	default:
		return "<invalid terminator>"
	}
}

func (pr *printer) argument(a *ArgumentExpr) string {
	if a.Kind == ArgInPlace {
		return "in_place(" + pr.place(&a.Place) + ")"
	}
	return pr.value(&a.Value)
}
