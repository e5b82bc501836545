// internal/pagination/window_test.go
package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWindowSmallTotalsShowEverything(t *testing.T) {
	for total := 1; total <= 11; total++ {
		items := Window(0, total, DefaultRadius)
		require.Len(t, items, total, "total=%d", total)
		for i, item := range items {
			assert.Equal(t, Item(i), item)
		}
	}
}

func TestWindowShapes(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		radius         int
		want           []Item
	}{
		{
			name:    "band at the start keeps a contiguous head",
			current: 0, total: 20, radius: 2,
			want: []Item{0, 1, 2, Ellipsis, 19},
		},
		{
			name:    "band in the middle elides both sides",
			current: 9, total: 20, radius: 2,
			want: []Item{0, Ellipsis, 7, 8, 9, 10, 11, Ellipsis, 19},
		},
		{
			name:    "band at the end keeps a contiguous tail",
			current: 19, total: 20, radius: 2,
			want: []Item{0, Ellipsis, 17, 18, 19},
		},
		{
			name:    "band adjacent to the head drops the left ellipsis",
			current: 3, total: 20, radius: 2,
			want: []Item{0, 1, 2, 3, 4, 5, Ellipsis, 19},
		},
		{
			name:    "band adjacent to the tail drops the right ellipsis",
			current: 16, total: 20, radius: 2,
			want: []Item{0, Ellipsis, 14, 15, 16, 17, 18, 19},
		},
		{
			name:    "zero radius still anchors both ends",
			current: 9, total: 20, radius: 0,
			want: []Item{0, Ellipsis, 9, Ellipsis, 19},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Window(tt.current, tt.total, tt.radius))
		})
	}
}

func TestWindowDegenerateInputs(t *testing.T) {
	assert.Nil(t, Window(0, 0, 2))
	assert.Nil(t, Window(5, -3, 2))

	// Out-of-range current clamps instead of failing.
	assert.Equal(t, Window(0, 20, 2), Window(-7, 20, 2))
	assert.Equal(t, Window(19, 20, 2), Window(99, 20, 2))

	// Negative radius behaves as zero.
	assert.Equal(t, Window(9, 20, 0), Window(9, 20, -1))
}

func TestWindowProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 500).Draw(t, "total")
		current := rapid.IntRange(-10, 510).Draw(t, "current")
		radius := rapid.IntRange(0, 10).Draw(t, "radius")

		items := Window(current, total, radius)
		require.NotEmpty(t, items)

		clamped := current
		if clamped < 0 {
			clamped = 0
		}
		if clamped > total-1 {
			clamped = total - 1
		}

		// First and last pages always present, current always present.
		assert.Equal(t, Item(0), items[0])
		assert.Equal(t, Item(total-1), items[len(items)-1])
		assert.Contains(t, items, Item(clamped))

		// Page indices strictly increase; an ellipsis only stands in
		// for a genuine gap and never repeats.
		prev := -1
		for i, item := range items {
			if item == Ellipsis {
				require.Greater(t, i, 0)
				require.Less(t, i, len(items)-1)
				require.NotEqual(t, Ellipsis, items[i-1])
				continue
			}
			page := int(item)
			require.Greater(t, page, prev)
			if prev >= 0 && i > 0 && items[i-1] == Ellipsis {
				require.Greater(t, page, prev+1, "ellipsis must cover at least one hidden page")
			}
			prev = page
		}

		// Same inputs, same strip.
		assert.Equal(t, items, Window(current, total, radius))
	})
}
