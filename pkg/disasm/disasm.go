// Package disasm renders a compiled unit as a human-readable bytecode
// listing, the way a Chunk.Disassemble renders a chunk:
// a header block followed by one "%04X  %s" line per instruction,
// except the listing here is driven by bytecode.Insn.Disasm rather
// than by decoding a flat byte stream, since instructions here are
// already typed Go values rather than an opcode-plus-operand-bytes
// encoding.
package disasm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// formatter is the bytecode.Formatter a Disassembler feeds to every
// instruction's Disasm call. It also collects the child iseqs any
// call/define/once opcode enqueues, so the driver can emit them after
// their parent without the caller having to walk the tree itself.
type formatter struct {
	pending []iseq.ISeq
	seen    map[string]bool
}

func newFormatter() *formatter {
	return &formatter{seen: map[string]bool{}}
}

func (f *formatter) Label(l *iseq.Label) string {
	if l == nil {
		return "<nil>"
	}
	if l.PC() < 0 {
		return fmt.Sprintf("%s(unbound)", l.Name())
	}
	return fmt.Sprintf("%04X", l.PC())
}

func (f *formatter) CallData(cd calldata.CallData) string {
	var flags []string
	for mask, name := range callDataFlagNames {
		if cd.HasFlag(mask) {
			flags = append(flags, name)
		}
	}
	sort.Strings(flags)
	s := fmt.Sprintf("<callinfo!mid:%s, argc:%d", cd.Method, cd.Argc)
	if len(flags) > 0 {
		s += ", " + strings.Join(flags, "|")
	}
	if len(cd.KwArg) > 0 {
		s += ", kw:[" + strings.Join(cd.KwArg, ",") + "]"
	}
	return s + ">"
}

var callDataFlagNames = map[uint16]string{
	calldata.FlagArgsSplat:  "ARGS_SPLAT",
	calldata.FlagBlockarg:   "BLOCKARG",
	calldata.FlagFCall:      "FCALL",
	calldata.FlagVCall:      "VCALL",
	calldata.FlagArgsSimple: "ARGS_SIMPLE",
	calldata.FlagBlockiseq:  "BLOCKISEQ",
	calldata.FlagKwarg:      "KWARG",
	calldata.FlagKwSplat:    "KW_SPLAT",
	calldata.FlagTailcall:   "TAILCALL",
	calldata.FlagSuper:      "SUPER",
	calldata.FlagZSuper:     "ZSUPER",
	calldata.FlagOptSend:    "OPT_SEND",
	calldata.FlagKwSplatMut: "KW_SPLAT_MUT",
}

func (f *formatter) Object(v any) string {
	if val, ok := v.(value.Value); ok {
		return val.Inspect()
	}
	return fmt.Sprintf("%v", v)
}

func (f *formatter) Cache(c any) string {
	if oc, ok := c.(*bytecode.OnceCache); ok {
		return fmt.Sprintf("<ic:once:%s>", oc.ID())
	}
	if c == nil {
		return "<ic:0>"
	}
	return fmt.Sprintf("<ic:%v>", c)
}

func (f *formatter) Enqueue(child iseq.ISeq) {
	if child == nil {
		return
	}
	key := child.ID()
	if key == "" {
		key = fmt.Sprintf("%p", child)
	}
	if f.seen[key] {
		return
	}
	f.seen[key] = true
	f.pending = append(f.pending, child)
}

// Disassembler walks a unit and every child iseq it transitively
// references (method/block/class/once bodies), rendering each as its
// own labeled section.
type Disassembler struct {
	root iseq.ISeq
}

// New returns a Disassembler for root.
func New(root iseq.ISeq) *Disassembler {
	return &Disassembler{root: root}
}

// String renders the full listing: the root unit, then every child
// iseq reachable from it, breadth-first.
func (d *Disassembler) String() string {
	var sb strings.Builder
	f := newFormatter()
	f.seen[d.root.ID()] = true
	queue := []iseq.ISeq{d.root}

	total := 0
	for len(queue) > 0 {
		unit := queue[0]
		queue = queue[1:]

		n := d.writeUnit(&sb, unit, f)
		total += n

		queue = append(queue, f.pending...)
		f.pending = nil
	}

	sb.WriteString(fmt.Sprintf("; %s instructions total\n", humanize.Comma(int64(total))))
	return sb.String()
}

func (d *Disassembler) writeUnit(sb *strings.Builder, unit iseq.ISeq, f *formatter) int {
	sb.WriteString(fmt.Sprintf("; === %s (%s) ===\n", unit.Name(), unit.Type()))
	if lt := unit.Locals(); lt.Size() > 0 {
		sb.WriteString(fmt.Sprintf("; locals: %s\n", strings.Join(lt.Names, ", ")))
	}
	if len(unit.CatchTable()) > 0 {
		sb.WriteString("; catch table:\n")
		for _, c := range unit.CatchTable() {
			sb.WriteString(fmt.Sprintf(";   %s [%04X, %04X) -> %s\n",
				catchTagName(c.Tag), c.PCFrom, c.PCTo, f.Label(c.Target)))
			if c.ChildIseq != nil {
				f.Enqueue(c.ChildIseq)
			}
		}
	}

	insns := unit.Insns()
	for pc, raw := range insns {
		insn, ok := raw.(bytecode.Insn)
		if !ok {
			sb.WriteString(fmt.Sprintf("%04X  <malformed instruction: %T>\n", pc, raw))
			continue
		}
		sb.WriteString(fmt.Sprintf("%04X  %s\n", pc, insn.Disasm(f)))
	}
	sb.WriteString("\n")
	return len(insns)
}

func catchTagName(tag iseq.CatchTag) string {
	switch tag {
	case iseq.CatchReturn:
		return "return"
	case iseq.CatchBreak:
		return "break"
	case iseq.CatchNext:
		return "next"
	case iseq.CatchRetry:
		return "retry"
	case iseq.CatchRedo:
		return "redo"
	case iseq.CatchRescue:
		return "rescue"
	case iseq.CatchEnsure:
		return "ensure"
	case iseq.CatchRaise:
		return "raise"
	default:
		return "unknown"
	}
}

// Lines renders the same listing as String, split into one string per
// output line, with the trailing newline stripped from each.
func (d *Disassembler) Lines() []string {
	text := d.String()
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
