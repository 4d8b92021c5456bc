package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/R-Hidayatullah/tos-parser/converter"
	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/gltfutil"
	"github.com/R-Hidayatullah/tos-parser/xac"
	"github.com/qmuntal/gltf"
)

// BatchResult holds the outcome of converting one file.
type BatchResult struct {
	Input  string
	Output string
	Error  error
}

// findModels returns every .xac file under dir.
func findModels(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".xac" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func outputPath(inputDir, outputDir, input, ext string) string {
	rel, err := filepath.Rel(inputDir, input)
	if err != nil {
		rel = filepath.Base(input)
	}
	return filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

// runBatch converts files with a pool of cfg.Workers goroutines. Each worker
// opens and decodes its own files; results are returned in input order.
func runBatch(cfg *Config, inputDir, outputDir string, files []string, observer emfx.Observer) []BatchResult {
	total := len(files)
	results := make([]BatchResult, total)
	var processed atomic.Int64

	start := time.Now()
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					log.Printf("[%d/%d] %.1f files/sec", p, total, float64(p)/time.Since(start).Seconds())
				}
			}
		}
	}()

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out := outputPath(inputDir, outputDir, files[i], ".glb")
				results[i] = BatchResult{Input: files[i], Output: out, Error: convertFile(cfg, files[i], out, nil, observer)}
				processed.Add(1)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(done)
	return results
}

// convertFile converts one model and the given motions to a glTF file.
func convertFile(cfg *Config, input, output string, motions []string, observer emfx.Observer) error {
	doc, err := xac.LoadWithOption(input, &xac.Option{Observer: observer})
	if err != nil {
		return err
	}
	texDir := cfg.TextureDir
	if texDir == "" {
		texDir = filepath.Dir(input)
	}
	gltfDoc, err := converter.NewXACToGLTFConverter(cfg.converterOption()).Convert(doc, texDir)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}
	if err := addMotions(cfg, gltfDoc, motions, observer); err != nil {
		return err
	}
	return save(gltfDoc, output)
}

// animateFile adds motions to an existing glTF file, such as an earlier conversion.
func animateFile(cfg *Config, input, output string, motions []string, observer emfx.Observer) error {
	gltfDoc, err := gltfutil.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if err := addMotions(cfg, gltfDoc, motions, observer); err != nil {
		return err
	}
	if cfg.Embed {
		gltfutil.EmbedImages(gltfDoc, filepath.Dir(input))
	}
	return save(gltfDoc, output)
}

func addMotions(cfg *Config, gltfDoc *gltf.Document, motions []string, observer emfx.Observer) error {
	for _, m := range motions {
		anim, err := loadMotion(m, observer)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		if converter.AddAnimationToGltf(gltfDoc, anim, name, cfg.Scale) == nil {
			log.Print("no animation channels matched: ", m)
		}
	}
	return nil
}

func save(gltfDoc *gltf.Document, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	return gltfutil.Save(gltfDoc, output)
}
