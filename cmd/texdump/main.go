package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"cpu-rasterizer/internal/texture"
)

func dumpTexture(src, dstDir string) (string, error) {
	tex, err := texture.Load(src)
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dstDir, stem+".png")
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()

	if err := png.Encode(f, texture.ToNRGBA(tex)); err != nil {
		return "", fmt.Errorf("encode %s: %w", dst, err)
	}
	return dst, nil
}

func main() {
	outDir := flag.String("output", "texdump", "Directory for decoded PNGs")
	checker := flag.Bool("checker", false, "Also write the fallback checkerboard")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: texdump [-output dir] [-checker] file...")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	errors := 0
	for _, p := range paths {
		dst, err := dumpTexture(p, *outDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		fmt.Printf("OK  %s -> %s\n", p, dst)
	}

	if *checker {
		dst := filepath.Join(*outDir, "checkerboard.png")
		f, err := os.Create(dst)
		if err == nil {
			err = png.Encode(f, texture.ToNRGBA(texture.Checkerboard()))
			f.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR checkerboard: %v\n", err)
			errors++
		} else {
			fmt.Printf("OK  checkerboard -> %s\n", dst)
		}
	}

	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All textures decoded.")
}
