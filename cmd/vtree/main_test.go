package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

const oldDoc = `
tag: ul
attrs:
  class: list
children:
  - tag: li
    key: a
    children: [alpha]
  - tag: li
    key: b
    attrs:
      onclick: $pick
    children: [beta]
`

const newDoc = `
tag: ul
attrs:
  class: list big
children:
  - tag: li
    key: a
    children: [alpha!]
  - tag: li
    key: b
    attrs:
      onclick: $pick
    children: [beta]
  - tag: li
    key: c
    children: [gamma]
`

// reorderedDoc moves b in front of a.
const reorderedDoc = `
tag: ul
attrs:
  class: list
children:
  - tag: li
    key: b
    attrs:
      onclick: $pick
    children: [beta]
  - tag: li
    key: a
    children: [alpha]
`

func writeDocs(t *testing.T, docs ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(docs))
	for i, doc := range docs {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".yaml")
		if err := os.WriteFile(paths[i], []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiffText(t *testing.T) {
	paths := writeDocs(t, oldDoc, newDoc)
	out, err := run(t, "diff", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}

	for _, want := range []string{
		`SetAttr      / class=list big`,
		`ReplaceText  /0/0 "alpha{+!+}"`,
		`AppendChild  / <li key="c"> (2 nodes)`,
		"3 patches: AppendChild 1, ReplaceText 1, SetAttr 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiffCongruent(t *testing.T) {
	paths := writeDocs(t, oldDoc, oldDoc)
	out, err := run(t, "diff", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	if !strings.Contains(out, "trees are congruent") {
		t.Errorf("output = %q", out)
	}
}

func TestDiffKeyed(t *testing.T) {
	paths := writeDocs(t, oldDoc, reorderedDoc)

	out, err := run(t, "diff", "--keyed", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	if !strings.Contains(out, "MoveChild") {
		t.Errorf("keyed diff should move children:\n%s", out)
	}

	out, err = run(t, "diff", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	if strings.Contains(out, "MoveChild") {
		t.Errorf("positional diff should not move children:\n%s", out)
	}
}

func TestDiffJSON(t *testing.T) {
	paths := writeDocs(t, oldDoc, newDoc)
	out, err := run(t, "diff", "--format", "json", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}

	var patches []map[string]any
	if err := json.Unmarshal([]byte(out), &patches); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	var ops []string
	for _, p := range patches {
		ops = append(ops, p["op"].(string))
	}
	if diff := cmp.Diff([]string{"SetAttr", "ReplaceText", "AppendChild"}, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if patches[1]["text"] != "alpha!" || patches[1]["path"] != "/0/0" {
		t.Errorf("ReplaceText patch = %v", patches[1])
	}
}

func TestDiffJSONPatch(t *testing.T) {
	paths := writeDocs(t, oldDoc, newDoc)
	out, err := run(t, "diff", "-f", "jsonpatch", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	patch, err := jsonpatch.DecodePatch([]byte(out))
	if err != nil {
		t.Fatalf("DecodePatch() error = %v\n%s", err, out)
	}
	if len(patch) != 3 {
		t.Errorf("len(patch) = %d, want 3", len(patch))
	}
}

func TestDiffBinary(t *testing.T) {
	paths := writeDocs(t, oldDoc, newDoc)
	out, err := run(t, "diff", "--keyed", "--format", "binary", paths[0], paths[1])
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}

	frame, err := protocol.DecodeFrame([]byte(out))
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if frame.Type != protocol.FramePatches || !frame.Flags.Has(protocol.FlagKeyed) {
		t.Errorf("frame = %v flags %08b", frame.Type, frame.Flags)
	}
	pf, err := protocol.DecodePatches(frame.Payload)
	if err != nil {
		t.Fatalf("DecodePatches() error = %v", err)
	}
	if len(pf.Patches) != 3 {
		t.Errorf("len(Patches) = %d, want 3", len(pf.Patches))
	}
}

func TestDiffErrors(t *testing.T) {
	paths := writeDocs(t, oldDoc, "tag: [")
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing argument", []string{"diff", paths[0]}, "E601"},
		{"unknown format", []string{"diff", "-f", "xml", paths[0], paths[0]}, "E601"},
		{"unreadable file", []string{"diff", paths[0], filepath.Join(t.TempDir(), "nope.yaml")}, "E401"},
		{"broken document", []string{"diff", paths[0], paths[1]}, "E401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if got := vterrors.Code(err); got != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		args []string
	}{
		{"positional", []string{oldDoc, newDoc}, nil},
		{"keyed", []string{oldDoc, newDoc}, []string{"--keyed"}},
		{"keyed reorder", []string{oldDoc, reorderedDoc}, []string{"-k"}},
		{"shrink", []string{newDoc, oldDoc}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := writeDocs(t, tt.docs...)
			args := append([]string{"check"}, tt.args...)
			out, err := run(t, append(args, paths...)...)
			if err != nil {
				t.Fatalf("check error = %v\n%s", err, out)
			}
			if got := strings.Count(out, "✓"); got != 3 {
				t.Errorf("passed checks = %d, want 3:\n%s", got, out)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}

	out, _ = run(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version output = %q", out)
	}
}

func TestServeRequiresTree(t *testing.T) {
	if _, err := run(t, "serve"); err == nil {
		t.Error("serve without --tree should fail")
	}
}

func TestTextDiff(t *testing.T) {
	colorEnabled = false
	tests := []struct {
		old, next string
		want      string
	}{
		{"alpha", "alpha!", `"alpha{+!+}"`},
		{"count: 1", "count: 2", `"count: [-1-]{+2+}"`},
		{"", "new", `"{+new+}"`},
		{"same", "same", `"same"`},
	}
	for _, tt := range tests {
		if got := textDiff(tt.old, tt.next); got != tt.want {
			t.Errorf("textDiff(%q, %q) = %s, want %s", tt.old, tt.next, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error = %v", err)
	}
	if cfg.Snapshot.Driver != config.DriverMemory {
		t.Errorf("Driver = %q, want memory", cfg.Snapshot.Driver)
	}

	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"server": {"port": 9000}, "diff": {"keyed": true}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9000 || !cfg.Diff.Keyed {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not a single JSON line: %v\n%s", err, buf.String())
	}
	if line["msg"] != "shown" {
		t.Errorf("msg = %v, want shown", line["msg"])
	}

	buf.Reset()
	newLogger(config.LogConfig{Level: "bogus", Format: "text"}, &buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text log = %q", buf.String())
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SnapshotConfig
		want any
	}{
		{"memory", config.SnapshotConfig{Driver: config.DriverMemory}, &snapshot.MemoryStore{}},
		{"bolt", config.SnapshotConfig{Driver: config.DriverBolt, Path: filepath.Join(t.TempDir(), "v.db")}, &snapshot.BoltStore{}},
		{"s3", config.SnapshotConfig{Driver: config.DriverS3, Bucket: "b", Region: "eu-west-1", Endpoint: "http://localhost:9000"}, &snapshot.S3Store{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := openStore(tt.cfg)
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			defer store.Close()

			var ok bool
			switch tt.want.(type) {
			case *snapshot.MemoryStore:
				_, ok = store.(*snapshot.MemoryStore)
			case *snapshot.BoltStore:
				_, ok = store.(*snapshot.BoltStore)
			case *snapshot.S3Store:
				_, ok = store.(*snapshot.S3Store)
			}
			if !ok {
				t.Errorf("openStore() = %T, want %T", store, tt.want)
			}
		})
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); vterrors.Code(err) != "E502" {
		t.Errorf("envCredentials() without env error = %v, want E502", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "id" || creds.SecretAccessKey != "secret" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestFileApp(t *testing.T) {
	paths := writeDocs(t, oldDoc)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := vdom.NewRegistry()
	app := fileAppFactory(paths[0], logger)("s1", reg)

	first := app.View()
	if first.Tag() != "ul" || first.NumChildren() != 2 {
		t.Fatalf("View() = %v", first)
	}
	cb := first.Child(1).Listeners()["onclick"]
	if !reg.Invoke(cb, vdom.Null()) {
		t.Error("the $pick handle is not registered")
	}

	if err := os.WriteFile(paths[0], []byte(newDoc), 0644); err != nil {
		t.Fatal(err)
	}
	second := app.View()
	if second.NumChildren() != 3 {
		t.Errorf("View() after edit has %d children, want 3", second.NumChildren())
	}
	if second.Child(1).Listeners()["onclick"] != cb {
		t.Error("the $pick handle changed between renders")
	}

	if err := os.WriteFile(paths[0], []byte("tag: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if got := app.View(); got != second {
		t.Error("View() with a broken document should keep the last tree")
	}
}
