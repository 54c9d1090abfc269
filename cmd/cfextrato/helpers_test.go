package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	cfextrato "github.com/alnah/go-cfextrato"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fixtures, environment, mocks
// ---------------------------------------------------------------------------

const (
	fixturePath = "../../testdata/cfe.xml"
	fixtureID   = "CFe35210361099008000141599000040190001234567890"
)

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2021, 3, 5, 9, 7, 3, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Logger: newLogger(&stderr, logrus.InfoLevel),
	}
	return env, &stdout, &stderr
}

// copyFixture copies the sample receipt into dir under name.
func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// mockConverter names each document after its file and streams a fake PDF.
type mockConverter struct {
	errFor map[string]error // keyed by file base name

	mu    sync.Mutex
	calls []cfextrato.Input
}

func (m *mockConverter) Convert(_ context.Context, in cfextrato.Input) (*cfextrato.ConvertResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	m.mu.Unlock()

	base := filepath.Base(in.Source)
	if err := m.errFor[base]; err != nil {
		return nil, err
	}

	id := "CFe" + strings.TrimSuffix(base, filepath.Ext(base))
	res := &cfextrato.ConvertResult{
		HTML: []byte("<html>" + id + "</html>"),
		View: &cfextrato.ViewModel{DocumentID: id},
	}
	if in.HTMLOnly {
		return res, nil
	}
	res.PDF = []byte("%PDF-1.4 mock")
	if in.Download != nil {
		if err := in.Download.Stream(id, res.PDF); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (m *mockConverter) Calls() []cfextrato.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cfextrato.Input(nil), m.calls...)
}

// mockPool hands out one shared converter.
type mockPool struct {
	conv       CLIConverter
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *mockPool) Acquire(context.Context) (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) counts() (acquired, released int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired, p.released
}
