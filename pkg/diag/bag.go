package diag

import "sync"

// SourceFile tracks the name and content of a single source file.
type SourceFile struct {
	Name    string
	Content []rune
}

// Bag collects diagnostics during a run. It is safe for concurrent use so
// independent module conversions may report into the same bag.
type Bag struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
	errorCount  int
	warnCount   int
	files       []SourceFile
}

func NewBag(files ...SourceFile) *Bag {
	return &Bag{files: files}
}

// AddFile registers a source file and returns its index for token.Pos.FileIndex.
func (b *Bag) AddFile(name string, content []rune) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, SourceFile{Name: name, Content: content})
	return len(b.files) - 1
}

func (b *Bag) Report(d *Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diagnostics = append(b.diagnostics, d)
	switch d.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
}

func (b *Bag) HasErrors() bool {
	return b.ErrorCount() > 0
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Diagnostics returns a copy of everything reported so far, in order.
func (b *Bag) Diagnostics() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]*Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

func (b *Bag) file(index int) (SourceFile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.files) {
		return SourceFile{}, false
	}
	return b.files[index], true
}
