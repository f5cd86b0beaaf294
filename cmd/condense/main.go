package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/reoring/condense"
	"github.com/reoring/condense/source/fastjson"
	"github.com/reoring/condense/source/jsoniter"
	"github.com/reoring/condense/source/yaml"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "condense CLI\n\nUsage:\n  condense parse [-driver gojson|json|jsoniter|fastjson|yaml] [-max-depth N] [-max-bytes N] [-dup ignore|error] [-v] [file]\n\nNotes:\n  - Reads stdin when no file is given and prints the parsed value as indented JSON.\n  - zstd-compressed input is detected and decompressed.")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "parse":
		return parseCmd(args[1:], stdin, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func parseCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		driverName string
		dup        string
		maxDepth   int
		maxBytes   int64
		verbose    bool
	)
	fs.StringVar(&driverName, "driver", "gojson", "wire driver: gojson, json, jsoniter, fastjson or yaml")
	fs.StringVar(&dup, "dup", "ignore", "duplicate key policy: ignore or error")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fs.BoolVar(&verbose, "v", false, "log debug output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	driver, err := driverFor(driverName)
	if err != nil {
		logger.Error("invalid flag", "err", err)
		return 2
	}
	opt := condense.ParseOpt{MaxDepth: maxDepth, MaxBytes: maxBytes}
	switch dup {
	case "ignore":
	case "error":
		opt.Strictness.OnDuplicateKey = condense.SeverityError
	default:
		logger.Error("invalid flag", "err", fmt.Errorf("unknown -dup value %q", dup))
		return 2
	}

	in := stdin
	name := "<stdin>"
	if fs.NArg() > 0 {
		name = fs.Arg(0)
		f, err := os.Open(name)
		if err != nil {
			logger.Error("open input", "file", name, "err", err)
			return 1
		}
		defer f.Close()
		in = f
	}
	b, err := io.ReadAll(in)
	if err != nil {
		logger.Error("read input", "file", name, "err", err)
		return 1
	}
	if bytes.HasPrefix(b, zstdMagic) {
		if b, err = decompress(b); err != nil {
			logger.Error("decompress input", "file", name, "err", err)
			return 1
		}
		logger.Debug("decompressed zstd input", "file", name, "bytes", len(b))
	}
	logger.Debug("parsing", "file", name, "driver", driver.Name(), "bytes", len(b))

	v, err := condense.ParseBytes(driver, b, opt)
	if err != nil {
		if e, ok := condense.AsError(err); ok {
			logger.Error("parse failed", "code", e.Code, "path", e.Path, "err", err)
		} else {
			logger.Error("parse failed", "err", err)
		}
		return 1
	}
	out, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("encode output", "err", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func driverFor(name string) (condense.JSONDriver, error) {
	switch name {
	case "gojson", "go-json":
		return condense.GoJSONDriver(), nil
	case "json":
		return condense.StdJSONDriver(), nil
	case "jsoniter":
		return jsoniter.Driver(), nil
	case "fastjson":
		return fastjson.Driver(), nil
	case "yaml":
		return yaml.Driver(), nil
	}
	return nil, errors.New("unknown driver " + name)
}

func decompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}
