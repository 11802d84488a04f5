// Command sigdump builds pipeline resource signatures from a TOML or YAML
// description and prints their binding layout. Given a WGSL shader it also
// checks the shader's bindings against the layout.
//
//	sigdump -desc material.toml -shader lit.wgsl -backend wgpu
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
)

func main() {
	var (
		desc    = flag.String("desc", "", "signature description file (.toml, .yaml)")
		shader  = flag.String("shader", "", "WGSL shader to check against the layout")
		name    = flag.String("backend", backend.BackendWGPU, "backend: wgpu or gl")
		glsl    = flag.String("glsl", "", "print GLSL generated for this entry point")
		verbose = flag.Bool("v", false, "debug logging")
		watch   = flag.Bool("watch", false, "dump again whenever an input file changes")
	)
	flag.Parse()

	if *desc == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		gpubind.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts := options{desc: *desc, shader: *shader, backend: *name, glsl: *glsl}
	err := dump(os.Stdout, opts)
	if !*watch {
		if err != nil {
			log.Fatal(err)
		}
		return
	}
	if err != nil {
		log.Print(err)
	}
	if err := watchInputs(opts); err != nil {
		log.Fatal(err)
	}
}

// watchInputs dumps again on every change of the description or shader.
// Directories are watched so that editors replacing files are noticed.
func watchInputs(opts options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	inputs := make(map[string]bool)
	for _, p := range []string{opts.desc, opts.shader} {
		if p == "" {
			continue
		}
		inputs[filepath.Clean(p)] = true
		if err := watcher.Add(filepath.Dir(p)); err != nil {
			return err
		}
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stdout, "\n--- %s changed\n", event.Name)
			if err := dump(os.Stdout, opts); err != nil {
				log.Print(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("sigdump: watcher error", "error", err)
		}
	}
}
