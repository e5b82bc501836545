// internal/pagination/window.go

// Package pagination computes the bounded set of page controls shown
// under a paginated list: page indices plus ellipsis markers where
// pages are elided. Purely a function of (current, total, radius);
// independent of the data being paged.
package pagination

// Item is one slot in the pagination strip: a zero-based page index,
// or Ellipsis for an elided gap.
type Item int

// Ellipsis marks a gap between the leading/trailing anchors and the
// band centered on the current page.
const Ellipsis Item = -1

// DefaultRadius is the number of pages shown on each side of the
// current page.
const DefaultRadius = 2

// Window returns the pagination strip for the given current page,
// total page count, and band radius. When total fits within
// 7 + 2*radius, every index appears. Otherwise the first and last
// indices always appear, a contiguous band of width 2*radius+1 is
// centered on current (clamped into range), and a single Ellipsis
// fills each gap. The function is total: any inputs yield a valid
// strip, and identical inputs always yield identical output.
func Window(current, total, radius int) []Item {
	if total <= 0 {
		return nil
	}
	if radius < 0 {
		radius = 0
	}
	if current < 0 {
		current = 0
	}
	if current > total-1 {
		current = total - 1
	}

	items := make([]Item, 0, total)

	if total <= 7+2*radius {
		for i := 0; i < total; i++ {
			items = append(items, Item(i))
		}
		return items
	}

	left := current - radius
	if left < 0 {
		left = 0
	}
	right := current + radius
	if right > total-1 {
		right = total - 1
	}

	if left > 1 {
		items = append(items, 0, Ellipsis)
	} else {
		for i := 0; i < left; i++ {
			items = append(items, Item(i))
		}
	}

	for i := left; i <= right; i++ {
		items = append(items, Item(i))
	}

	if right < total-2 {
		items = append(items, Ellipsis, Item(total-1))
	} else {
		for i := right + 1; i < total; i++ {
			items = append(items, Item(i))
		}
	}

	return items
}
