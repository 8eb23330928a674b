// ABOUTME: Fake external-tool runner and OCR engine for tests.
// ABOUTME: Records invocations so tests can assert on arguments.
package testutil

import (
	"context"
	"sync"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// FakeRunner records calls and delegates to Fn when set.
type FakeRunner struct {
	mu    sync.Mutex
	Calls []Call
	Fn    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Run records the call.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.Fn != nil {
		return f.Fn(ctx, name, args...)
	}
	return nil, nil
}

// FakeOCR returns canned text per image path, or Text for any path.
type FakeOCR struct {
	mu     sync.Mutex
	Text   string
	ByPath map[string]string
	Err    error
	Seen   []string
	Hook   func(path string)
}

// Recognize records path and returns the canned response.
func (f *FakeOCR) Recognize(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	f.Seen = append(f.Seen, path)
	f.mu.Unlock()
	if f.Hook != nil {
		f.Hook(path)
	}
	if f.Err != nil {
		return "", f.Err
	}
	if t, ok := f.ByPath[path]; ok {
		return t, nil
	}
	return f.Text, nil
}

// Calls returns how many images were recognized.
func (f *FakeOCR) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Seen)
}
