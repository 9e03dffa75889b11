package config

import (
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagTracker_FromFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("projects", pflag.ContinueOnError)
	minPct := fs.Int("min-pct", 1, "")
	startFY := fs.Int("start-fy", 0, "")
	statuses := fs.StringSlice("status", nil, "")
	format := fs.String("format", "xlsx", "")
	require.NoError(t, fs.Parse([]string{"--min-pct", "30", "--status", "Active,Closed"}))

	ft := NewFlagTrackerFromFlagSet(fs)
	assert.True(t, ft.WasSet("min-pct"))
	assert.False(t, ft.WasSet("format"))

	assert.Equal(t, 30, ft.MergeInt(1, *minPct, "min-pct"))
	assert.Equal(t, "csv", ft.MergeString("csv", *format, "format"))
	assert.Nil(t, ft.IntPtr(*startFY, "start-fy"))
	assert.Equal(t, []string{"Active", "Closed"}, ft.StringSlice(*statuses, "status"))
	assert.Nil(t, ft.StringSlice(nil, "product-type"))
}

func TestFlagTracker_Merge(t *testing.T) {
	ft := NewFlagTracker()
	assert.True(t, ft.MergeBool(true, false, "exclude-af"))

	ft.Set("exclude-af")
	assert.False(t, ft.MergeBool(true, false, "exclude-af"))
	require.NotNil(t, ft.IntPtr(2020, "exclude-af"))
	assert.Equal(t, map[string]bool{"exclude-af": true}, ft.GetAll())
}

func TestFlagTracker_Concurrent(t *testing.T) {
	ft := NewFlagTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				ft.Set("flag")
			}
			ft.WasSet("flag")
		}(i)
	}
	wg.Wait()
	assert.True(t, ft.WasSet("flag"))
}
