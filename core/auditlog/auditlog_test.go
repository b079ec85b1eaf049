package auditlog

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestRecordAndRead(t *testing.T) {
	buf := &bytes.Buffer{}
	recorder := New(buf)
	recorder.now = func() time.Time {
		return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	assert.Nil(t, recorder.Record("echo hi | wc -c", []string{"echo", "wc"}))
	assert.Nil(t, recorder.Record("pwd", []string{"pwd"}))

	var entries []*Entry
	assert.Nil(t, Read(buf, func(e *Entry) {
		entries = append(entries, e)
	}))

	assert.Len(t, entries, 2)
	assert.Equal(t, "echo hi | wc -c", entries[0].Line)
	assert.Equal(t, []string{"echo", "wc"}, entries[0].Commands)
	assert.Equal(t, "pwd", entries[1].Line)
}

func TestReadMalformed(t *testing.T) {
	err := Read(bytes.NewBufferString("{not json}\n"), func(e *Entry) {
		t.Fatal("handler should not be called")
	})
	assert.Error(t, err)
}

func TestOpenFileAppends(t *testing.T) {
	memFs := afero.NewMemMapFs()

	for i := 0; i < 2; i++ {
		fd, err := OpenFile(memFs, "/var/log/gosh.jsonl")
		assert.NoError(t, err)
		assert.Nil(t, New(fd).Record("pwd", []string{"pwd"}))
		assert.Nil(t, fd.Close())
	}

	contents, err := afero.ReadFile(memFs, "/var/log/gosh.jsonl")
	assert.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(contents, []byte("\n")))
}
