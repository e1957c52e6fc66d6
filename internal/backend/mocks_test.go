package backend

import (
	"context"
	"os"
	"path/filepath"
)

// MockSubmitter is a test double for Submitter.
type MockSubmitter struct {
	SubmitFunc func(ctx context.Context, in Input, prompt string) (string, error)
	Calls      int
}

func (m *MockSubmitter) Submit(ctx context.Context, in Input, prompt string) (string, error) {
	m.Calls++
	return m.SubmitFunc(ctx, in, prompt)
}

// fakeRunner answers per program name and records invocations.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
	// pages is how many PNG files a pdftoppm call creates.
	pages int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			path := prefix + "-" + string(rune('0'+i)) + ".png"
			if err := os.WriteFile(filepath.Clean(path), []byte("png"), 0600); err != nil {
				return nil, err
			}
		}
	}
	return []byte(f.outputs[name]), nil
}
