package fileloader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sentinel-rag/promptkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validContent = `# Prompt: Tactical Assessment
# Version: 1.0
# Last Updated: 2026-08-01
# Purpose: Synthesize analysis into actionable intelligence

## ROLE
You are an intelligence officer.

## CONTEXT
{retrieved_context}

## TASK
Assess {image_analysis} against the retrieved context.

## CONSTRAINTS
NEVER speculate beyond the data.

## OUTPUT FORMAT
JSON object with threat_level and observations.
`

const brokenContent = `# Prompt: Broken
# Version: 1.0
# Last Updated: 2026-08-01
# Purpose: Missing sections

## ROLE
Persona only.
`

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)
	tpl, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.Equal(t, "tactical_assessment", tpl.Name)
	assert.Equal(t, "1.0", tpl.Version())
	assert.Equal(t, []string{"retrieved_context", "image_analysis"}, tpl.Variables())
}

func TestLoader_Load_NotFound(t *testing.T) {
	t.Parallel()
	l := New(t.TempDir())
	_, err := l.Load("missing")
	require.ErrorIs(t, err, promptkit.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoader_Load_InvalidNotCached(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "broken", brokenContent)
	l := New(dir)
	_, err := l.Load("broken")
	require.ErrorIs(t, err, promptkit.ErrInvalidTemplate)
	var ite *InvalidTemplateError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "broken", ite.Name)
	assert.NotEmpty(t, ite.Issues)

	// Still fails on retry; nothing was cached.
	_, err = l.Load("broken")
	require.ErrorIs(t, err, promptkit.ErrInvalidTemplate)
}

func TestLoader_CacheHit_NoReloadWhenDisabled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)
	first, err := l.Load("tactical_assessment")
	require.NoError(t, err)

	// Mutate the backing file; with auto-reload disabled the cached template wins.
	require.NoError(t, os.WriteFile(path, []byte(brokenContent), 0o600))
	second, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoader_AutoReload_SignatureChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTemplate(t, dir, "tactical_assessment", validContent)

	var mu sync.Mutex
	sig := Signature{ModTime: time.Unix(1000, 0), Size: 1}
	setSig := func(s Signature) { mu.Lock(); sig = s; mu.Unlock() }
	l := New(dir, WithAutoReload(), WithStatFunc(func(string) (Signature, error) {
		mu.Lock()
		defer mu.Unlock()
		return sig, nil
	}))

	first, err := l.Load("tactical_assessment")
	require.NoError(t, err)

	// Unchanged signature: cached template served without re-reading.
	again, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.Same(t, first, again)

	// Changed signature and changed content: a fresh template is loaded.
	updated := []byte(validContent + "\nExtra line with {new_var}.\n")
	require.NoError(t, os.WriteFile(path, updated, 0o600))
	setSig(Signature{ModTime: time.Unix(2000, 0), Size: int64(len(updated))})
	third, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Contains(t, third.Variables(), "new_var")
}

func TestLoader_FailedReload_KeepsPriorEntry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTemplate(t, dir, "tactical_assessment", validContent)

	var mu sync.Mutex
	sig := Signature{ModTime: time.Unix(1000, 0), Size: 1}
	setSig := func(s Signature) { mu.Lock(); sig = s; mu.Unlock() }
	l := New(dir, WithAutoReload(), WithStatFunc(func(string) (Signature, error) {
		mu.Lock()
		defer mu.Unlock()
		return sig, nil
	}))

	first, err := l.Load("tactical_assessment")
	require.NoError(t, err)

	// Break the file; the reload fails and the caller sees an explicit error.
	require.NoError(t, os.WriteFile(path, []byte(brokenContent), 0o600))
	setSig(Signature{ModTime: time.Unix(2000, 0), Size: 2})
	_, err = l.Load("tactical_assessment")
	require.ErrorIs(t, err, promptkit.ErrInvalidTemplate)

	// The prior valid entry was left untouched: with the original signature
	// restored, the cached template is served without touching storage.
	setSig(Signature{ModTime: time.Unix(1000, 0), Size: 1})
	again, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestLoader_Invalidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)
	first, err := l.Load("tactical_assessment")
	require.NoError(t, err)

	l.Invalidate("tactical_assessment")
	second, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	l.InvalidateAll()
	third, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.NotSame(t, second, third)
}

func TestLoader_ConcurrentLoads_SingleTemplate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)

	const workers = 16
	results := make([]*promptkit.Template, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, err := l.Load("tactical_assessment")
			assert.NoError(t, err)
			results[i] = tpl
		}()
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoader_Render(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)
	out, err := l.Render("tactical_assessment", map[string]string{
		"retrieved_context": "historical patrol data",
		"image_analysis":    "two contacts heading north",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "historical patrol data")
	assert.Contains(t, out, "two contacts heading north")

	_, err = l.Render("tactical_assessment", map[string]string{"image_analysis": "x"})
	require.ErrorIs(t, err, promptkit.ErrMissingVariable)
}

func TestLoader_RenderSafe_MissingTemplate(t *testing.T) {
	t.Parallel()
	l := New(t.TempDir())
	out, warnings := l.RenderSafe("ghost", nil)
	assert.Equal(t, "[PROMPT NOT FOUND: ghost]", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ghost")
}

func TestLoader_LoadOrDefault(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)

	tpl, err := l.LoadOrDefault("tactical_assessment", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "1.0", tpl.Version())

	tpl, err = l.LoadOrDefault("ghost", "fallback {x}")
	require.NoError(t, err)
	assert.Equal(t, "ghost", tpl.Name)
	assert.Equal(t, []string{"x"}, tpl.Variables())
}

func TestLoader_ValidateAll(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "good", validContent)
	writeTemplate(t, dir, "bad", brokenContent)
	l := New(dir)

	issues, err := l.ValidateAll()
	require.NoError(t, err)
	assert.NotContains(t, issues, "good")
	require.Contains(t, issues, "bad")
	codes := make([]string, 0, len(issues["bad"]))
	for _, issue := range issues["bad"] {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, promptkit.CodeMissingSection)
}

func TestLoader_NamesAndTemplates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "zeta", validContent)
	writeTemplate(t, dir, "alpha", validContent)
	writeTemplate(t, dir, "bad", brokenContent)
	l := New(dir)

	names, err := l.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bad", "zeta"}, names)

	templates, err := l.Templates()
	require.NoError(t, err)
	require.Len(t, templates, 2, "the invalid template is skipped")
}

func TestLoader_History(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)
	_, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	_, err = l.Load("tactical_assessment") // cache hit, no new event
	require.NoError(t, err)

	history := l.History()
	require.Len(t, history, 1)
	assert.Equal(t, "tactical_assessment", history[0].Name)
	assert.Equal(t, "1.0", history[0].Version)
	assert.NotEmpty(t, history[0].ContentHash)
}

func TestLoader_CompareVersions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir)

	same, err := l.CompareVersions("tactical_assessment", validContent)
	require.NoError(t, err)
	assert.True(t, same.HashesMatch)
	assert.Equal(t, "1.0", same.CurrentVersion)

	diff, err := l.CompareVersions("tactical_assessment", validContent+"changed")
	require.NoError(t, err)
	assert.False(t, diff.HashesMatch)
	assert.Equal(t, len(validContent), diff.CurrentLength)
	assert.Equal(t, len(validContent)+7, diff.OtherLength)
}

func TestLoader_CacheDisabled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemplate(t, dir, "tactical_assessment", validContent)
	l := New(dir, WithCacheDisabled())
	first, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	second, err := l.Load("tactical_assessment")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
