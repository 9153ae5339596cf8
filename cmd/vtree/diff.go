package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/jsonview"
	"github.com/vango-dev/vtree/pkg/live"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/treefile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Output formats of the diff command.
const (
	FormatText      = "text"
	FormatJSON      = "json"
	FormatJSONPatch = "jsonpatch"
	FormatBinary    = "binary"
)

func diffCmd() *cobra.Command {
	var (
		keyed  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print the patches that turn OLD into NEW",
		Long: `Diff two tree documents and print the patches that turn the first
into the second.

Formats:
  text       one line per patch, text changes shown character by character
  json       the patch list as JSON
  jsonpatch  RFC 6902 operations against the JSON view of the tree
  binary     a Patches frame as sent over the wire (hex dump on a terminal)

Examples:
  vtree diff old.yaml new.yaml
  vtree diff --keyed old.yaml new.yaml
  vtree diff --format jsonpatch old.json new.json`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1], keyed, format)
		},
	}

	cmd.Flags().BoolVarP(&keyed, "keyed", "k", false, "Match children by key")
	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "Output format: text, json, jsonpatch or binary")

	return cmd
}

func runDiff(w io.Writer, oldPath, newPath string, keyed bool, format string) error {
	pair, err := loadPair(oldPath, newPath)
	if err != nil {
		return err
	}
	patches := vdom.DiffWith(pair.prev, pair.next, vdom.Options{Keyed: keyed})

	switch format {
	case FormatText:
		return writeText(w, pair, patches)
	case FormatJSON:
		return writePatchJSON(w, pair.callbacks, patches)
	case FormatJSONPatch:
		data, err := jsonview.Patches(patches)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatBinary:
		return writeBinary(w, patches, keyed)
	default:
		return vterrors.New("E601").
			WithDetailf("unknown format %q", format).
			WithSuggestion("Use one of: text, json, jsonpatch, binary")
	}
}

// writeText applies patches to a live copy of the old tree and prints
// each operation as it lands, so that ReplaceText can show the text it
// overwrites.
func writeText(w io.Writer, pair *treePair, patches []vdom.Patch) error {
	if len(patches) == 0 {
		success(w, "trees are congruent")
		return nil
	}

	p := &textPrinter{
		Tree:      live.New(pair.prev, live.WithRegistry(pair.registry)),
		w:         w,
		callbacks: pair.callbacks,
	}
	if err := p.apply(patches); err != nil {
		return err
	}

	counts := vdom.CountOps(patches)
	ops := make([]string, 0, len(counts))
	for op, n := range counts {
		ops = append(ops, fmt.Sprintf("%s %d", op, n))
	}
	sort.Strings(ops)
	fmt.Fprintf(w, "\n%d patches: %s\n", len(patches), strings.Join(ops, ", "))
	return nil
}

// textPrinter is a vdom.Backend that prints every operation before
// passing it on to a live tree.
type textPrinter struct {
	*live.Tree
	w         io.Writer
	callbacks treefile.Callbacks
}

func (p *textPrinter) apply(patches []vdom.Patch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ve, ok := r.(*vterrors.VTreeError)
			if !ok {
				panic(r)
			}
			err = ve
		}
	}()
	vdom.Apply(p, patches)
	return nil
}

func (p *textPrinter) line(op vdom.PatchOp, path vdom.Path, detail string) {
	fmt.Fprintf(p.w, "%s %s %s\n", paint(opColor(op), fmt.Sprintf("%-12s", op)), paint(grayFg, path.String()), detail)
}

func (p *textPrinter) Replace(path vdom.Path, n *vdom.Node) {
	p.line(vdom.PatchReplace, path, describeNode(n))
	p.Tree.Replace(path, n)
}

func (p *textPrinter) ReplaceText(path vdom.Path, text string) {
	old := ""
	if n := vdom.Lookup(p.Tree.Snapshot(), path); n != nil {
		old = n.Text()
	}
	p.line(vdom.PatchReplaceText, path, textDiff(old, text))
	p.Tree.ReplaceText(path, text)
}

func (p *textPrinter) SetAttr(path vdom.Path, name string, value vdom.Value) {
	p.line(vdom.PatchSetAttr, path, name+"="+formatValue(value, p.callbacks))
	p.Tree.SetAttr(path, name, value)
}

func (p *textPrinter) RemoveAttr(path vdom.Path, name string) {
	p.line(vdom.PatchRemoveAttr, path, name)
	p.Tree.RemoveAttr(path, name)
}

func (p *textPrinter) AppendChild(path vdom.Path, n *vdom.Node) {
	p.line(vdom.PatchAppendChild, path, describeNode(n))
	p.Tree.AppendChild(path, n)
}

func (p *textPrinter) InsertChild(path vdom.Path, index int, n *vdom.Node) {
	p.line(vdom.PatchInsertChild, path, fmt.Sprintf("%d %s", index, describeNode(n)))
	p.Tree.InsertChild(path, index, n)
}

func (p *textPrinter) RemoveChild(path vdom.Path, index int) {
	p.line(vdom.PatchRemoveChild, path, fmt.Sprint(index))
	p.Tree.RemoveChild(path, index)
}

func (p *textPrinter) MoveChild(path vdom.Path, from, to int) {
	p.line(vdom.PatchMoveChild, path, fmt.Sprintf("%d -> %d", from, to))
	p.Tree.MoveChild(path, from, to)
}

func opColor(op vdom.PatchOp) *color.Color {
	switch op {
	case vdom.PatchAppendChild, vdom.PatchInsertChild:
		return greenFg
	case vdom.PatchRemoveChild, vdom.PatchRemoveAttr:
		return redFg
	case vdom.PatchReplace, vdom.PatchReplaceText:
		return yellowFg
	case vdom.PatchMoveChild:
		return magentaFg
	default:
		return cyanFg
	}
}

// textDiff renders the change from old to next in wdiff style: deletions
// as [-text-], insertions as {+text+}.
func textDiff(old, next string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, next, false))

	var b strings.Builder
	b.WriteByte('"')
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString(paint(redFg, "[-"+d.Text+"-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(paint(greenFg, "{+"+d.Text+"+}"))
		}
	}
	b.WriteByte('"')
	return b.String()
}

func describeNode(n *vdom.Node) string {
	switch {
	case n == nil:
		return "<nil>"
	case n.IsText():
		return fmt.Sprintf("%q", n.Text())
	}

	var b strings.Builder
	b.WriteString("<" + n.Tag())
	if n.Key() != "" {
		fmt.Fprintf(&b, " key=%q", n.Key())
	}
	b.WriteString(">")
	if size := n.Size(); size > 1 {
		fmt.Fprintf(&b, " (%d nodes)", size)
	}
	return b.String()
}

// formatValue prints callbacks by the name the document used for them.
func formatValue(v vdom.Value, cbs treefile.Callbacks) string {
	if cb, ok := v.AsCallback(); ok && cbs != nil {
		if name, ok := cbs.Name(cb); ok {
			return "$" + name
		}
	}
	return v.String()
}

// writePatchJSON prints the patch list with one object per patch.
func writePatchJSON(w io.Writer, cbs treefile.Callbacks, patches []vdom.Patch) error {
	out := make([]map[string]any, len(patches))
	for i, p := range patches {
		m := map[string]any{
			"op":   p.Op.String(),
			"path": p.Path.String(),
		}
		switch p.Op {
		case vdom.PatchReplace, vdom.PatchAppendChild:
			m["node"] = jsonview.Node(p.Node)
		case vdom.PatchInsertChild:
			m["index"] = p.Index
			m["node"] = jsonview.Node(p.Node)
		case vdom.PatchReplaceText:
			m["text"] = p.Text
		case vdom.PatchSetAttr:
			m["name"] = p.Name
			m["value"] = jsonview.Value(p.Value)
			if cb, ok := p.Value.AsCallback(); ok {
				if name, ok := cbs.Name(cb); ok {
					m["callback"] = name
				}
			}
		case vdom.PatchRemoveAttr:
			m["name"] = p.Name
		case vdom.PatchRemoveChild:
			m["index"] = p.Index
		case vdom.PatchMoveChild:
			m["from"] = p.From
			m["index"] = p.Index
		}
		out[i] = m
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// writeBinary writes the patches as one Patches frame. A terminal gets a
// hex dump instead of raw bytes.
func writeBinary(w io.Writer, patches []vdom.Patch, keyed bool) error {
	flags := protocol.FlagFinal
	if keyed {
		flags |= protocol.FlagKeyed
	}
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 1, Patches: patches})
	data := protocol.NewFrameWithFlags(protocol.FramePatches, flags, payload).Encode()

	if isTerminal(w) {
		_, err := io.WriteString(w, hex.Dump(data))
		return err
	}
	_, err := w.Write(data)
	return err
}
