package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/alecthomas/kong"
	"github.com/filepg/fpg/batch"
	"github.com/filepg/fpg/tools"
)

// version is set by `go build`
var version = "<version>"

// CLI commands (see https://github.com/alecthomas/kong)
var CLI struct {
	Debug int `short:"v" type:"counter" help:"Enable debug mode (-v for DebugLow, -vv for DebugHigh)."`

	Version struct {
	} `cmd:"" help:"Show the program version."`

	Run struct {
		Age bool `short:"a"  help:"Use the built-in age backend instead of GnuPG (no external tools needed)."`
		//-----------------
		Dir string `arg:"" optional:"" type:"existingdir"  help:"The working directory with the files to encrypt (default '.')."`
	} `cmd:"" help:"Batch-encrypt, rename and split the archive files in a directory."`
}

func main() {
	description := "The program batch-encrypts the archive files of a directory with per-file passphrases and splits large ciphertexts."
	ctx := kong.Parse(&CLI, kong.UsageOnError(), kong.Description(description))
	switch ctx.Selected().Name {

	case "version":
		fmt.Printf("%s %s\n", path.Base(os.Args[0]), version)
		fmt.Printf("%s %s/%s (%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.Compiler)

	case "run":
		debug := uint8(CLI.Debug)
		dir := CLI.Run.Dir
		if dir == "" {
			dir = "."
		}
		run(dir, CLI.Run.Age, debug)

	default:
		panic(fmt.Sprintf("command not implemented: '%s'", ctx.Command()))
	}
}

//-##################################################################################################################-//

func run(dir string, useAge bool, debugLvl uint8) {

	// wire backends (config and encryptor must match)
	cfg := batch.DefaultConfig()
	var enc tools.Encryptor = tools.NewGPG(cfg.Cipher, cfg.Digest, cfg.CompressionLevel)
	var split tools.Splitter = tools.NewExecSplit()
	if useAge {
		cfg = batch.AgeConfig()
		enc = tools.NewAge(cfg.CompressionLevel, true)
		split = tools.NewNativeSplit()
	}

	// RUN pipeline
	p := batch.NewPipeline(cfg, enc, split, tools.OSFileOps{}, os.Stdin, os.Stdout, debugLvl)
	if err := p.Run(dir); err != nil {
		if !errors.Is(err, batch.ErrAborted) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
