package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Notes:
// - Layers overlay in place: a key missing from a layer keeps the value set
//   by the layer below it.
// - The host table is lenient about unknown keys; overlay files are strict.

// ---------------------------------------------------------------------------
// TestOptions_Validate - Ranges and file names
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	t.Parallel()

	want := &Options{Outline: true, OutlineDepth: 2, OutputFile: "book.typ", PreludeCheck: true}
	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Errorf("Default() mismatch (-want +got):\n%s", diff)
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "depth 1", mutate: func(o *Options) { o.OutlineDepth = 1 }},
		{name: "depth 6", mutate: func(o *Options) { o.OutlineDepth = 6 }},
		{name: "depth 0", mutate: func(o *Options) { o.OutlineDepth = 0 }, wantErr: true},
		{name: "depth 7", mutate: func(o *Options) { o.OutlineDepth = 7 }, wantErr: true},
		{name: "workers 64", mutate: func(o *Options) { o.Workers = 64 }},
		{name: "workers negative", mutate: func(o *Options) { o.Workers = -1 }, wantErr: true},
		{name: "workers 65", mutate: func(o *Options) { o.Workers = 65 }, wantErr: true},
		{name: "output file empty", mutate: func(o *Options) { o.OutputFile = " " }, wantErr: true},
		{name: "output file with dir", mutate: func(o *Options) { o.OutputFile = "out/book.typ" }, wantErr: true},
		{name: "output file backslash", mutate: func(o *Options) { o.OutputFile = "out\\book.typ" }, wantErr: true},
		{name: "output file windows path", mutate: func(o *Options) { o.OutputFile = "C:\\out\\book.typ" }, wantErr: true},
		{name: "output file dotdot", mutate: func(o *Options) { o.OutputFile = ".." }, wantErr: true},
		{name: "output file custom", mutate: func(o *Options) { o.OutputFile = "manual.typ" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := Default()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Validate() error = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestOptions_FromJSON - Host [output.typst] table
// ---------------------------------------------------------------------------

func TestOptions_FromJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    *Options
		wantErr error
	}{
		{name: "absent table", input: "", want: Default()},
		{name: "null table", input: "null", want: Default()},
		{
			name:  "prelude keys and host keys",
			input: `{"prelude": "theme/prelude.typ", "prelude-str": "#let x = 1", "command": "mdbook-typst", "optional": true}`,
			want: &Options{
				Prelude: "theme/prelude.typ", PreludeStr: "#let x = 1",
				Outline: true, OutlineDepth: 2, OutputFile: "book.typ", PreludeCheck: true,
			},
		},
		{
			name:  "added options",
			input: `{"outline": false, "outline-depth": 3, "output-file": "manual.typ", "prelude-check": false, "workers": 4}`,
			want: &Options{
				OutlineDepth: 3, OutputFile: "manual.typ", Workers: 4,
			},
		},
		{name: "wrong type", input: `{"outline-depth": "two"}`, wantErr: ErrConfigParse},
		{name: "out of range", input: `{"outline-depth": 9}`, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Default()
			err := got.FromJSON([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromJSON() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromJSON() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestOptions_LoadFile - YAML and TOML overlays
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestOptions_LoadFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    *Options
		wantErr error
	}{
		{
			name:    "yaml overlay keeps unset keys",
			file:    "typst.yaml",
			content: "outline-depth: 4\nprelude: builtin:plain\n",
			want: &Options{
				Prelude: "builtin:plain", Outline: true, OutlineDepth: 4,
				OutputFile: "book.typ", PreludeCheck: true, Workers: 2,
			},
		},
		{
			name:    "yml extension",
			file:    "typst.yml",
			content: "outline: false\n",
			want:    &Options{OutlineDepth: 2, OutputFile: "book.typ", PreludeCheck: true, Workers: 2},
		},
		{
			name:    "yaml unknown key",
			file:    "typst.yaml",
			content: "outlines: false\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "bare toml table",
			file:    "typst.toml",
			content: "output-file = \"manual.typ\"\nworkers = 8\n",
			want: &Options{
				Outline: true, OutlineDepth: 2, OutputFile: "manual.typ", PreludeCheck: true, Workers: 8,
			},
		},
		{
			name: "book.toml output table",
			file: "book.toml",
			content: "[book]\ntitle = \"T\"\n\n[output.html]\n\n[output.typst]\n" +
				"prelude-str = \"#let a = 1\"\noutline-depth = 3\n",
			want: &Options{
				PreludeStr: "#let a = 1", Outline: true, OutlineDepth: 3,
				OutputFile: "book.typ", PreludeCheck: true, Workers: 2,
			},
		},
		{
			name:    "book.toml without typst table",
			file:    "book.toml",
			content: "[output.html]\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "toml unknown key",
			file:    "typst.toml",
			content: "depth = 3\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "toml syntax error",
			file:    "typst.toml",
			content: "workers = \n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "json overlay is strict",
			file:    "typst.json",
			content: `{"command": "x"}`,
			wantErr: ErrConfigParse,
		},
		{
			name:    "validated after decode",
			file:    "typst.yaml",
			content: "workers: 100\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "empty file",
			file:    "typst.yaml",
			content: "",
			want:    &Options{Outline: true, OutlineDepth: 2, OutputFile: "book.typ", PreludeCheck: true, Workers: 2},
		},
		{
			name:    "unsupported extension",
			file:    "typst.ini",
			content: "x=1",
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Default()
			got.Workers = 2
			err := got.LoadFile(writeConfig(t, tt.file, tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadFile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptions_LoadFile_NotFound(t *testing.T) {
	t.Parallel()

	err := Default().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFile() error = %v, want ErrConfigNotFound", err)
	}
}

func TestOptions_Decode_TooLarge(t *testing.T) {
	t.Parallel()

	data := make([]byte, MaxInputSize+1)
	if err := Default().Decode(data, FormatYAML); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Decode() error = %v, want ErrInputTooLarge", err)
	}
}
