// Package dashboard builds the single parameterised dashboard view from the
// session's fetched data.
package dashboard

import (
	"strconv"
	"time"

	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/utils"
	"github.com/jrsteele09/go-github-dashboard/stats"
)

// Card is one stat card.
type Card struct {
	Title string
	Value string
}

// Profile is the header of the view.
type Profile struct {
	Login     string
	Name      string
	URL       string
	AvatarURL string
	Followers int
	Repos     int
}

type View struct {
	Viewer *Profile
	Owner  *Profile

	Repository  string
	Description string
	URL         string

	Cards            []Card
	OpenIssues       int
	OpenPullRequests int

	// Series is nil until the repository is loaded.
	Series *stats.Series
}

// Ready reports whether the repository data is present.
func (v View) Ready() bool {
	return v.Series != nil
}

// Build assembles the view. Any argument may be nil while loading.
func Build(viewer *github.Viewer, owner *github.Owner, repo *github.Repository, now time.Time) View {
	var v View
	if viewer != nil {
		v.Viewer = viewerProfile(viewer)
	}
	if owner != nil {
		v.Owner = ownerProfile(owner)
	}
	if repo == nil {
		return v
	}

	v.Repository = utils.FirstNonEmpty(repo.FullName, repo.Name)
	v.Description = repo.Description
	v.URL = repo.URL
	v.Cards = Cards(repo)
	v.OpenIssues = utils.Value(repo.IssuesOpen).Total
	v.OpenPullRequests = utils.Value(repo.PullRequestsOpen).Total
	v.Series = stats.SeriesFor(repo, now)
	return v
}

// Cards lists the stat cards of repo. Latest Release and Primary Language are
// omitted when the repository has none.
func Cards(repo *github.Repository) []Card {
	cards := []Card{
		{Title: "Discussions", Value: strconv.Itoa(discussions(repo))},
		{Title: "Stargazers", Value: strconv.Itoa(repo.StargazersCount)},
		{Title: "Watchers", Value: strconv.Itoa(watchers(repo))},
		{Title: "Forks", Value: strconv.Itoa(repo.ForksCount)},
	}
	if release := LatestRelease(repo); release != "" {
		cards = append(cards, Card{Title: "Latest Release", Value: release})
	}
	if repo.PrimaryLanguage != nil && repo.PrimaryLanguage.Name != "" {
		cards = append(cards, Card{Title: "Primary Language", Value: repo.PrimaryLanguage.Name})
	}
	return cards
}

// LatestRelease is the latest release name, else the newest tag name.
func LatestRelease(repo *github.Repository) string {
	if repo.Release != nil && repo.Release.Name != "" {
		return repo.Release.Name
	}
	if repo.Refs != nil && len(repo.Refs.Tags) > 0 {
		return repo.Refs.Tags[0].Name
	}
	return ""
}

func discussions(repo *github.Repository) int {
	if repo.Discussions == nil {
		return 0
	}
	return repo.Discussions.Total
}

func watchers(repo *github.Repository) int {
	if repo.Watchers == nil {
		return 0
	}
	return repo.Watchers.TotalCount
}

func viewerProfile(v *github.Viewer) *Profile {
	p := &Profile{Login: v.Login, Name: v.Name, URL: v.URL, AvatarURL: v.AvatarURL}
	if v.Followers != nil {
		p.Followers = v.Followers.TotalCount
	}
	if v.Repositories != nil {
		p.Repos = v.Repositories.TotalCount
	}
	return p
}

func ownerProfile(o *github.Owner) *Profile {
	p := &Profile{Login: o.Login, Name: o.Name, URL: o.URL, AvatarURL: o.AvatarURL, Repos: o.Repositories.TotalCount}
	if o.Followers != nil {
		p.Followers = o.Followers.TotalCount
	}
	return p
}

// DisplayName prefers the profile name over the login.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	return utils.FirstNonEmpty(p.Name, p.Login)
}
