package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = "age,glucose,outcome\n25,99.1,A\n40,150.0,B\n60,110.5,A\n"

func newTestLoader(entries int) *Loader {
	return NewLoader(NewCache(entries), DefaultOptions(), zap.NewNop())
}

func TestLoadFileCachesByContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diabetes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	l := newTestLoader(4)
	first := l.LoadFile(context.Background(), path)
	require.True(t, first.OK(), first.Message)
	assert.Equal(t, "diabetes.csv", first.Dataset.Name)
	assert.Equal(t, 3, first.Dataset.Rows)

	second := l.LoadFile(context.Background(), path)
	assert.Same(t, first.Dataset, second.Dataset)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"70,88.0,B\n"), 0o644))
	third := l.LoadFile(context.Background(), path)
	require.True(t, third.OK())
	assert.NotSame(t, first.Dataset, third.Dataset)
	assert.Equal(t, 4, third.Dataset.Rows)
}

func TestLoadFileFailures(t *testing.T) {
	l := newTestLoader(4)
	dir := t.TempDir()

	missing := l.LoadFile(context.Background(), filepath.Join(dir, "nope.csv"))
	assert.Nil(t, missing.Dataset)
	assert.Error(t, missing.Err)
	assert.True(t, strings.HasPrefix(missing.Message, "Error loading data: "), missing.Message)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	res := l.LoadFile(context.Background(), empty)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrEmptyInput)
	assert.Contains(t, res.Message, "no columns to parse from file")

	none := l.LoadFile(context.Background(), "")
	assert.ErrorIs(t, none.Err, ErrNoSource)
}

func TestLoadUploadAndLookup(t *testing.T) {
	l := newTestLoader(1)
	res := l.LoadUpload(context.Background(), "upload.csv", []byte(sampleCSV))
	require.True(t, res.OK(), res.Message)

	got := l.Lookup(res.Dataset.Key)
	assert.Same(t, res.Dataset, got.Dataset)

	// Capacity one: a second upload evicts the first.
	other := l.LoadUpload(context.Background(), "other.csv", []byte("x\n1\n"))
	require.True(t, other.OK())
	expired := l.Lookup(res.Dataset.Key)
	assert.Nil(t, expired.Dataset)
	assert.ErrorIs(t, expired.Err, ErrExpired)
	assert.Equal(t, ErrExpired.Error(), expired.Message)

	bad := l.LoadUpload(context.Background(), "bad.csv", []byte("a,b\n1,2,3\n"))
	assert.False(t, bad.OK())
	assert.NotEmpty(t, bad.Message)
}

func TestForgetPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	l := newTestLoader(4)
	first := l.LoadFile(context.Background(), path)
	require.True(t, first.OK())
	assert.True(t, l.ForgetPath(path))
	assert.False(t, l.ForgetPath(path))

	again := l.LoadFile(context.Background(), path)
	require.True(t, again.OK())
	assert.NotSame(t, first.Dataset, again.Dataset)
}
