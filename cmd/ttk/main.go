// Command ttk is the type-theory kernel's command-line front end:
// an interactive REPL, a batch statement runner, and a type-checker
// that discards evaluation results.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/alexshamov/TypeTheory/internal/config"
	"github.com/alexshamov/TypeTheory/internal/kernel"
	"github.com/alexshamov/TypeTheory/internal/kernelerr"
	"github.com/alexshamov/TypeTheory/internal/repl"
)

var (
	// Set by -ldflags during a release build.
	Version   = "dev"
	BuildTime = "unknown"

	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		configPath  = flag.String("config", "", "Path to a YAML kernel config file")
		unsafeFlag  = flag.Bool("unsafe", false, "Disable substitution-time consistency checking")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cfg, prelude, err := loadConfig(*configPath, *unsafeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	command := flag.Arg(0)
	switch command {
	case "repl":
		runREPL(cfg, prelude, flag.Args()[1:])
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: ttk run <file.tt>")
			os.Exit(1)
		}
		runFile(cfg, prelude, flag.Arg(1))
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: ttk check <file.tt>")
			os.Exit(1)
		}
		checkFile(cfg, prelude, flag.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

// loadConfig merges an optional YAML config file with the -unsafe flag,
// which always wins over the file's UnsafeMode when set on the command
// line, and returns the file's prelude list (empty when no config file
// was given).
func loadConfig(path string, unsafe bool) (kernel.Config, []string, error) {
	if path == "" {
		cfg := kernel.DefaultConfig()
		cfg.UnsafeMode = cfg.UnsafeMode || unsafe
		return cfg, nil, nil
	}
	f, err := config.Load(path)
	if err != nil {
		return kernel.Config{}, nil, err
	}
	cfg := f.KernelConfig()
	cfg.UnsafeMode = cfg.UnsafeMode || unsafe
	return cfg, f.Prelude, nil
}

// loadPrelude runs each prelude file's statements against r's kernel,
// discarding their output: a prelude is meant to set up declarations,
// not print anything.
func loadPrelude(r *repl.REPL, prelude []string) error {
	for _, path := range prelude {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := r.RunFile(src, path, nil); err != nil {
			return err
		}
	}
	return nil
}

func runREPL(cfg kernel.Config, prelude, files []string) {
	r := repl.NewWithVersion(cfg, Version, BuildTime)
	if err := loadPrelude(r, prelude); err != nil {
		printKernelError(err)
		os.Exit(1)
	}
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		if err := r.RunFile(src, path, os.Stdout); err != nil {
			printKernelError(err)
			os.Exit(1)
		}
	}
	r.Start(os.Stdout)
}

func runFile(cfg kernel.Config, prelude []string, path string) {
	r := repl.New(cfg)
	if err := loadPrelude(r, prelude); err != nil {
		printKernelError(err)
		os.Exit(1)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	if err := r.RunFile(src, path, os.Stdout); err != nil {
		printKernelError(err)
		os.Exit(1)
	}
}

// checkFile runs a file but discards evaluate/check output, reporting
// only whether every statement was accepted by the kernel.
func checkFile(cfg kernel.Config, prelude []string, path string) {
	r := repl.New(cfg)
	if err := loadPrelude(r, prelude); err != nil {
		printKernelError(err)
		os.Exit(1)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	if err := r.RunFile(src, path, nil); err != nil {
		printKernelError(err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func printKernelError(err error) {
	if rep, ok := kernelerr.AsReport(err); ok {
		fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", red("Error"), rep.Kind, rep.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
}

func printVersion() {
	fmt.Printf("ttk %s\n", bold(Version))
	if BuildTime != "unknown" {
		fmt.Printf("Built: %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("ttk - a pure type system kernel"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ttk <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  repl [file...]   Start the interactive REPL, optionally preloading files")
	fmt.Println("  run <file>       Execute a file's statements")
	fmt.Println("  check <file>     Execute a file, printing only pass/fail")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -version         Print version information")
	fmt.Println("  -help            Show this help message")
	fmt.Println("  -config <path>   Load kernel configuration from a YAML file")
	fmt.Println("  -unsafe          Disable substitution-time consistency checking")
}
