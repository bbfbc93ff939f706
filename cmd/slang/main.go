// Command slang is a thin, flag-driven wrapper around pkg/compiler,
// described by spec.md §1 only for completeness and kept minimal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/FrederikTobner/slang/pkg/compiler"
	"github.com/FrederikTobner/slang/pkg/config"
)

// Exit codes follow Unix sysexits.h, per spec.md §1/§6.
const (
	exitOK        = 0
	exitUsage     = 64
	exitDataErr   = 65
	exitNoInput   = 66
	exitSoftware  = 70
	exitCantCreat = 73
	exitIOErr     = 74
	exitNoPerm    = 77
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}

	var code int
	switch os.Args[1] {
	case "execute":
		code = cmdExecute(os.Args[2:])
	case "compile":
		code = cmdCompile(os.Args[2:])
	case "run":
		code = cmdRun(os.Args[2:])
	default:
		usage()
		code = exitUsage
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: slang execute <src> | compile <src> [-o <out>] | run <bytecode>")
}

func cmdExecute(args []string) int {
	fs := flag.NewFlagSet("execute", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "slang: no such file: %s\n", path)
			return exitNoInput
		}
		if os.IsPermission(err) {
			fmt.Fprintf(os.Stderr, "slang: permission denied: %s\n", path)
			return exitNoPerm
		}
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitIOErr
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitDataErr
	}

	if err := compiler.Run(src, path, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitSoftware
	}
	return exitOK
}

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	out := fs.String("o", "", "output bytecode file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "slang: no such file: %s\n", path)
			return exitNoInput
		}
		if os.IsPermission(err) {
			fmt.Fprintf(os.Stderr, "slang: permission denied: %s\n", path)
			return exitNoPerm
		}
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitIOErr
	}

	res, err := compiler.Compile(src, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitDataErr
	}

	outPath := *out
	if outPath == "" {
		outPath = path + ".slbc"
	}
	f, err := os.Create(outPath)
	if err != nil {
		if os.IsPermission(err) {
			fmt.Fprintf(os.Stderr, "slang: permission denied: %s\n", outPath)
			return exitNoPerm
		}
		fmt.Fprintf(os.Stderr, "slang: cannot create %s: %v\n", outPath, err)
		return exitCantCreat
	}
	defer f.Close()

	if err := compiler.WriteChunk(res.Chunk, f); err != nil {
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitIOErr
	}
	return exitOK
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "slang: no such file: %s\n", path)
			return exitNoInput
		}
		if os.IsPermission(err) {
			fmt.Fprintf(os.Stderr, "slang: permission denied: %s\n", path)
			return exitNoPerm
		}
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitIOErr
	}
	defer f.Close()

	chunk, err := compiler.ReadChunk(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slang: malformed bytecode: %v\n", err)
		return exitDataErr
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitDataErr
	}

	if err := compiler.RunChunk(chunk, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "slang: %v\n", err)
		return exitSoftware
	}
	return exitOK
}
