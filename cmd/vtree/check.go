package main

import (
	"errors"
	"io"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/spf13/cobra"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/jsonview"
	"github.com/vango-dev/vtree/pkg/live"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

var errNotCongruent = errors.New("patched tree is not congruent to NEW")

func checkCmd() *cobra.Command {
	var keyed bool

	cmd := &cobra.Command{
		Use:   "check OLD NEW",
		Short: "Verify that the patches from OLD to NEW reproduce NEW",
		Long: `Diff two tree documents, apply the patches to a live copy of OLD and
verify that the result is congruent to NEW.

The patches are checked three ways: applied directly, applied after an
encode/decode round trip through the wire format, and applied as RFC 6902
operations to the JSON view of OLD.

Examples:
  vtree check old.yaml new.yaml
  vtree check --keyed old.yaml new.yaml`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0], args[1], keyed)
		},
	}

	cmd.Flags().BoolVarP(&keyed, "keyed", "k", false, "Match children by key")

	return cmd
}

func runCheck(w io.Writer, oldPath, newPath string, keyed bool) error {
	pair, err := loadPair(oldPath, newPath)
	if err != nil {
		return err
	}
	patches := vdom.DiffWith(pair.prev, pair.next, vdom.Options{Keyed: keyed})

	applyLive := func(patches []vdom.Patch) error {
		tree := live.New(pair.prev, live.WithRegistry(pair.registry))
		if err := tree.Apply(patches); err != nil {
			return err
		}
		if !vdom.Equal(tree.Snapshot(), pair.next) {
			return errNotCongruent
		}
		return nil
	}

	checks := []struct {
		name string
		run  func() error
	}{
		{"live tree", func() error {
			return applyLive(patches)
		}},
		{"wire round trip", func() error {
			pf, err := protocol.DecodePatches(protocol.EncodePatches(&protocol.PatchesFrame{Patches: patches}))
			if err != nil {
				return err
			}
			return applyLive(pf.Patches)
		}},
		{"JSON patch", func() error {
			doc, err := jsonview.Document(pair.prev)
			if err != nil {
				return err
			}
			got, err := jsonview.ApplyJSON(doc, patches)
			if err != nil {
				return err
			}
			want, err := jsonview.Document(pair.next)
			if err != nil {
				return err
			}
			if !jsonpatch.Equal(got, want) {
				return errNotCongruent
			}
			return nil
		}},
	}

	info(w, "%d patches (keyed: %v)", len(patches), keyed)
	failed := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			failure(w, "%s: %v", c.name, err)
			failed++
			continue
		}
		success(w, "%s", c.name)
	}

	if failed > 0 {
		return vterrors.Newf(vterrors.CategoryRuntime, "%d of %d checks failed", failed, len(checks))
	}
	return nil
}
