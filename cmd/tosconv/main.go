package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/xsm"
)

func defaultOutputFile(input string, dumpMode bool) string {
	ext := filepath.Ext(input)
	base := input[0 : len(input)-len(ext)]
	if dumpMode {
		return base + ".yaml"
	}
	if isGLTF(input) {
		return base + "_anim" + ext
	}
	return base + ".glb"
}

func isGLTF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}

func loadMotion(path string, observer emfx.Observer) (*xsm.Document, error) {
	return xsm.LoadWithOption(path, &xsm.Option{Observer: observer})
}

func isOutput(path string) bool {
	if path == "-" {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf", ".yaml", ".yml":
		return true
	}
	return false
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.xac [motion.xsm ...] [output.glb]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s input.glb motion.xsm ... [output.glb]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -dump input.xac|input.xsm [output.yaml]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -batch inputdir [outputdir]\n", os.Args[0])
		flag.PrintDefaults()
	}
	confFile := flag.String("config", "", "YAML config file")
	scale := flag.Float64("scale", 0, "0: config value or 1")
	texDir := flag.String("texdir", "", "texture directory (default: input directory)")
	webp := flag.Bool("webp", false, "re-encode textures as WebP (EXT_texture_webp)")
	texLimit := flag.Int("texlimit", 0, "texture resolution limit (0: unlimited)")
	unlit := flag.Bool("unlit", false, "unlit all materials")
	zup := flag.Bool("zup", false, "source is Z-up; rotate to Y-up")
	dumpMode := flag.Bool("dump", false, "write the decoded document as YAML")
	batch := flag.Bool("batch", false, "convert every .xac under the input directory")
	workers := flag.Int("workers", 0, "batch workers (0: number of CPUs)")
	verbose := flag.Bool("v", false, "log every decoded chunk")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	var cfg Config
	if *confFile != "" {
		c, err := LoadConfig(*confFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg = c
	}
	cfg.Resolve(Flags{Scale: *scale, TextureDir: *texDir, WebP: *webp, TexLimit: *texLimit, Unlit: *unlit, ZUp: *zup, Workers: *workers})

	observer := emfx.NopObserver
	if *verbose {
		observer = emfx.NewLogObserver(log.Default())
	}

	input := flag.Arg(0)
	args := flag.Args()[1:]
	output := ""
	if len(args) > 0 && (*batch || isOutput(args[len(args)-1])) {
		output = args[len(args)-1]
		args = args[:len(args)-1]
	}

	if *batch {
		if output == "" {
			output = input
		}
		files, err := findModels(input)
		if err != nil {
			log.Fatal(err)
		}
		failed := 0
		for _, r := range runBatch(&cfg, input, output, files, observer) {
			if r.Error != nil {
				failed++
				log.Print(r.Input, ": ", r.Error)
			}
		}
		log.Printf("converted %d/%d files", len(files)-failed, len(files))
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if output == "" {
		output = defaultOutputFile(input, *dumpMode)
	}

	if *dumpMode {
		doc, err := loadAny(input, observer)
		if err != nil {
			log.Fatal(err)
		}
		w := os.Stdout
		if output != "-" {
			f, err := os.Create(output)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			w = f
		}
		if err := dump(w, doc); err != nil {
			log.Fatal(err)
		}
		return
	}

	if isGLTF(input) {
		if err := animateFile(&cfg, input, output, args, observer); err != nil {
			log.Fatal(err)
		}
		return
	}
	if strings.ToLower(filepath.Ext(input)) != ".xac" {
		log.Fatal("input must be an .xac model or a glTF file: ", input)
	}
	if err := convertFile(&cfg, input, output, args, observer); err != nil {
		log.Fatal(err)
	}
}
