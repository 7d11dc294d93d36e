//go:build ignore

// build.go - secreport build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	binary  = "secreport"
	mainPkg = "./cmd/secreport"
	distDir = "dist"
)

// releaseTargets are the GOOS/GOARCH pairs shipped by the release target
var releaseTargets = []struct{ goos, goarch string }{
	{"windows", "amd64"},
	{"linux", "amd64"},
	{"darwin", "arm64"},
}

var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	verboseFlag bool
)

func main() {
	target := flag.String("target", "build", "Build target")
	flag.BoolVar(&verboseFlag, "v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" && os.Getenv("WT_SESSION") == "" {
		colorReset, colorRed, colorGreen, colorBlue, colorCyan = "", "", "", "", ""
	}

	fmt.Println(colorCyan + "=== secreport build ===" + colorReset)
	start := time.Now()

	var err error
	switch *target {
	case "build":
		err = build(runtime.GOOS, runtime.GOARCH)
	case "test":
		err = runTests()
	case "clean":
		err = clean()
	case "release":
		err = release()
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("%s completed in %s", *target, time.Since(start).Round(time.Millisecond)))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func outputName(goos, goarch string) string {
	name := fmt.Sprintf("%s-%s-%s", binary, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(distDir, name)
}

func build(goos, goarch string) error {
	out := outputName(goos, goarch)
	printInfo(fmt.Sprintf("Building %s", out))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", out}
	if verboseFlag {
		args = append(args, "-v")
	}
	args = append(args, mainPkg)

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+goos, "GOARCH="+goarch)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s/%s failed: %w", goos, goarch, err)
	}
	return nil
}

func runTests() error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verboseFlag {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}
	return nil
}

func clean() error {
	printInfo("Removing " + distDir)
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", distDir, err)
	}
	return nil
}

func release() error {
	if err := clean(); err != nil {
		return err
	}
	var built []string
	for _, t := range releaseTargets {
		if err := build(t.goos, t.goarch); err != nil {
			return err
		}
		built = append(built, filepath.Base(outputName(t.goos, t.goarch)))
	}

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("secreport\nBuilt: %s\nBinaries: %s\n",
		time.Now().Format("2006-01-02 15:04:05"), strings.Join(built, ", "))
	return os.WriteFile(versionFile, []byte(content), 0644)
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build    Build secreport for the host platform")
	fmt.Println("  test     Run Go tests with the race detector")
	fmt.Println("  clean    Remove the dist directory")
	fmt.Println("  release  Cross-compile for windows, linux and darwin")
}
