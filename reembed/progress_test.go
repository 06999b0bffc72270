package reembed

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 100, 10)

	tracker.Start()
	tracker.Increment(25)
	tracker.Increment(25)
	tracker.Increment(50)

	assert.Equal(t, 100, tracker.Current())
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))

	output := buf.String()
	assert.Contains(t, output, "100/100 chunks")
	assert.Contains(t, output, "100.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 40, 100)

	tracker.Start()
	tracker.Update(10)
	assert.Empty(t, buf.String(), "below the report interval")

	tracker.Finish()
	assert.Contains(t, buf.String(), "40/40 files")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	tracker := NewProgressTracker(nil, "chunks", 10, 1)
	tracker.Start()
	tracker.Increment(25)
	assert.Equal(t, 10, tracker.Current())

	tracker.Update(30)
	assert.Equal(t, 10, tracker.Current())
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 10, 1)

	tracker.Update(5)
	tracker.Increment(1)
	tracker.Finish()

	assert.Zero(t, tracker.Current())
	assert.Zero(t, tracker.Elapsed())
	assert.Empty(t, buf.String())
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "chunks", 100, 30)
	tracker.Start()

	for i := 1; i <= 100; i++ {
		tracker.Update(i)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "Progress:"), "reports at 30, 60 and 90")
}

func TestProgressTracker_ConcurrentIncrement(t *testing.T) {
	tracker := NewProgressTracker(nil, "files", 1000, 50)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Increment(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tracker.Current())
}

func TestProgressTracker_Fail(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 4, 1)
	tracker.Start()

	tracker.Increment(2)
	tracker.Fail(1)

	assert.Equal(t, 3, tracker.Current())
	assert.Equal(t, 1, tracker.Failed())
	assert.Contains(t, buf.String(), "3/4 files (75.0%), 1 failed")

	tracker.Finish()
	assert.Contains(t, buf.String(), "4/4 files (100.0%), 1 failed")
}

func TestProgressTracker_StartResets(t *testing.T) {
	tracker := NewProgressTracker(nil, "chunks", 10, 1)
	tracker.Start()
	tracker.Fail(3)

	tracker.Start()
	assert.Zero(t, tracker.Current())
	assert.Zero(t, tracker.Failed())
}
