// svtest lowers every matching source file in-process and compares the
// printed IR and diagnostics with a recorded golden file.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/pipeline"
)

// Execution is what one file produces. Golden files hold one Execution.
type Execution struct {
	IR           string            `json:"ir"`
	Diagnostics  string            `json:"diagnostics"`
	ExitCode     int               `json:"exitCode"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
}

type FileTestResult struct {
	File    string     `json:"file"`
	Status  string     `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string     `json:"message,omitempty"`
	Diff    string     `json:"diff,omitempty"`
	Actual  *Execution `json:"actual,omitempty"`
}

var (
	generateGolden = flag.Bool("generate-golden", false, "Write golden files for the matched sources instead of comparing.")
	testFiles      = flag.String("test-files", "examples/*.sv", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	compilerArgs   = flag.String("args", "", "Warning and feature flags applied to every file, e.g. \"-Wall -Fno-wide-literals\".")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Print the diff of every failing file.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	if *generateGolden {
		for _, file := range files {
			if err := writeGolden(file); err != nil {
				log.Fatalf("%s[ERROR]%s %s: %v\n", cRed, cNone, file, err)
			}
			log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenPath(file))
		}
		return
	}

	results := runSuite(files)
	printSummary(results)
	writeJSONReport(results)
	for _, r := range results {
		if r.Status == "FAIL" || r.Status == "ERROR" {
			os.Exit(1)
		}
	}
}

func goldenPath(sourceFile string) string {
	name := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, name)
	}
	return filepath.Join(filepath.Dir(sourceFile), name)
}

func hashContent(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// execute compiles one file with a fresh configuration.
func execute(file string) (*Execution, error) {
	cfg := config.NewConfig()
	cfg.Color = false
	for _, arg := range strings.Fields(*compilerArgs) {
		if err := cfg.ApplyFlag(arg); err != nil {
			return nil, err
		}
	}
	srcs, err := pipeline.ReadFiles([]string{file})
	if err != nil {
		return nil, err
	}
	// Diagnostics name the file by its base name so golden files do not
	// depend on the checkout location.
	srcs[0].Name = filepath.Base(file)

	bag := diag.NewBag()
	mods, compileErr := pipeline.Compile(cfg, srcs, bag, nil)

	exec := &Execution{Fingerprints: make(map[string]string)}
	var diags bytes.Buffer
	diag.Render(&diags, bag, false)
	exec.Diagnostics = diags.String()
	if compileErr != nil {
		exec.ExitCode = 1
		return exec, nil
	}

	var out bytes.Buffer
	for _, mod := range mods {
		if err := ir.Print(&out, mod); err != nil {
			return nil, err
		}
		exec.Fingerprints[mod.Name] = fmt.Sprintf("%016x", ir.Fingerprint(mod))
	}
	exec.IR = out.String()
	return exec, nil
}

func writeGolden(file string) error {
	exec, err := execute(file)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(exec, "", "  ")
	if err != nil {
		return err
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(goldenPath(file), data, 0o644)
}

func testFile(file string) *FileTestResult {
	data, err := os.ReadFile(goldenPath(file))
	if os.IsNotExist(err) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "no golden file; run with --generate-golden"}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
	}
	var golden Execution
	if err := json.Unmarshal(data, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("corrupt golden file: %v", err)}
	}

	actual, err := execute(file)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
	}
	if diff := cmp.Diff(&golden, actual, cmpopts.EquateEmpty()); diff != "" {
		return &FileTestResult{File: file, Status: "FAIL", Message: "output differs from golden file", Diff: diff, Actual: actual}
	}
	return &FileTestResult{File: file, Status: "PASS"}
}

// runSuite tests files on *jobs workers. Files whose content is identical
// to an earlier file are skipped.
func runSuite(files []string) []*FileTestResult {
	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup
	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file)
			}
		}()
	}

	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
			continue
		}
		hash := hashContent(data)
		if original, seen := seenHashes[hash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", original)}
			continue
		}
		seenHashes[hash] = file
		tasks <- file
	}
	close(tasks)
	wg.Wait()
	close(resultsChan)

	var results []*FileTestResult
	for r := range resultsChan {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

func printSummary(results []*FileTestResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
		color := cGreen
		switch r.Status {
		case "FAIL", "ERROR":
			color = cRed
		case "SKIP":
			color = cYellow
		}
		fmt.Printf("%s[%s]%s %s", color, r.Status, cNone, r.File)
		if r.Message != "" {
			fmt.Printf(": %s", r.Message)
		}
		fmt.Println()
		if *verbose && r.Diff != "" {
			fmt.Print(formatDiff(r.Diff))
		}
	}
	fmt.Printf("\n%s%d passed, %d failed, %d errors, %d skipped%s\n",
		cBold, counts["PASS"], counts["FAIL"], counts["ERROR"], counts["SKIP"], cNone)
}

func formatDiff(diff string) string {
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-"):
			builder.WriteString(cRed)
		case strings.HasPrefix(trimmed, "+"):
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line + cNone + "\n")
	}
	return builder.String()
}

func writeJSONReport(results []*FileTestResult) {
	resultsMap := make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}
	data, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return
	}
	outputFile := *outputJSON
	if *jsonDir != "" {
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
		return
	}
	fmt.Printf("Full test report saved to %s\n", outputFile)
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			abs, err := filepath.Abs(file)
			if err != nil || seen[abs] {
				continue
			}
			if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, abs)
				seen[abs] = true
			}
		}
	}
	return allFiles, nil
}
