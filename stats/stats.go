// Package stats turns issue and pull request lists into daily open counts.
package stats

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-github-dashboard/github"
)

const day = 24 * time.Hour

// Item is anything that opens and may close.
type Item struct {
	CreatedAt time.Time
	ClosedAt  *time.Time
	Closed    bool
}

// DayBucket is one point of a daily series.
type DayBucket struct {
	Label string
	Day   time.Time
	Count int
}

// Series are the chart series of a repository.
type Series struct {
	Issues       []DayBucket
	PullRequests []DayBucket
}

// civil returns midnight of t's calendar day in loc, as a UTC instant that
// ignores DST so day arithmetic stays exact.
func civil(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowDays is the number of whole days from the first day of the previous
// calendar month to now.
func WindowDays(now time.Time) int {
	today := civil(now, now.Location())
	first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(first) / day)
}

// Buckets counts the items open on each of the days+1 days ending today,
// oldest first. An item is open on d when it was created on or before d and
// is not closed, or closed after d. It returns nil when no series can be
// built yet (days <= 0 or items nil).
func Buckets(items []Item, days int, now time.Time) []DayBucket {
	if days <= 0 || items == nil {
		return nil
	}
	loc := now.Location()
	today := civil(now, loc)

	buckets := make([]DayBucket, 0, days+1)
	for i := days; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		count := 0
		for _, item := range items {
			if openOn(item, d, loc) {
				count++
			}
		}
		y, m, dd := d.Date()
		buckets = append(buckets, DayBucket{
			Label: Label(d),
			Day:   time.Date(y, m, dd, 0, 0, 0, 0, loc),
			Count: count,
		})
	}
	return buckets
}

func openOn(item Item, d time.Time, loc *time.Location) bool {
	if civil(item.CreatedAt, loc).After(d) {
		return false
	}
	if !item.Closed || item.ClosedAt == nil {
		return true
	}
	return civil(*item.ClosedAt, loc).After(d)
}

// FromGitHub adapts issues or pull requests. A nil slice stays nil.
func FromGitHub(items []github.Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{CreatedAt: it.CreatedAt, ClosedAt: it.ClosedAt, Closed: it.Closed})
	}
	return out
}

// SeriesFor builds the issue and pull request series of repo over the
// trailing window. It returns nil when repo is nil.
func SeriesFor(repo *github.Repository, now time.Time) *Series {
	if repo == nil {
		return nil
	}
	days := WindowDays(now)
	return &Series{
		Issues:       Buckets(nonNil(FromGitHub(repo.Issues.Items)), days, now),
		PullRequests: Buckets(nonNil(FromGitHub(repo.PullRequests.Items)), days, now),
	}
}

// nonNil marks a loaded repository with no items as ready.
func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

// Max returns the highest count of a series.
func Max(buckets []DayBucket) int {
	m := 0
	for _, b := range buckets {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

// Label formats a day as "2nd Jan 2006".
func Label(t time.Time) string {
	return fmt.Sprintf("%s %s", ordinal(t.Day()), t.Format("Jan 2006"))
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
