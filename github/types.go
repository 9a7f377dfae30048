package github

import "time"

type RateLimit struct {
	Cost      int `json:"cost"`
	Remaining int `json:"remaining"`
}

type Count struct {
	Total int `json:"total"`
}

type TotalCount struct {
	TotalCount int `json:"totalCount"`
}

type RepositoryNode struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type Repositories struct {
	TotalCount int              `json:"totalCount"`
	Nodes      []RepositoryNode `json:"nodes"`
}

// Names lists the repository names in response order.
func (r Repositories) Names() []string {
	names := make([]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		names = append(names, n.Name)
	}
	return names
}

// Viewer is the authenticated user.
type Viewer struct {
	AvatarURL    string        `json:"avatarUrl"`
	Login        string        `json:"login"`
	Name         string        `json:"name,omitempty"`
	URL          string        `json:"url"`
	Followers    *TotalCount   `json:"followers,omitempty"`
	Repositories *Repositories `json:"repositories,omitempty"`
}

// Owner is the account (user or organization) owning the selected repository.
// Followers is nil for organizations.
type Owner struct {
	AvatarURL    string       `json:"avatarUrl"`
	Login        string       `json:"login"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Followers    *TotalCount  `json:"followers,omitempty"`
	Repositories Repositories `json:"repositories"`
}

type Author struct {
	AvatarURL string `json:"avatarUrl"`
	Login     string `json:"login"`
}

// Item is an issue or pull request.
type Item struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Number    int        `json:"number"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
	Closed    bool       `json:"closed"`
	Author    *Author    `json:"author"`
}

type Items struct {
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

type DiscussionItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Number int    `json:"number"`
}

type Discussions struct {
	Total       int              `json:"total"`
	Discussions []DiscussionItem `json:"discussions"`
}

type Release struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Tag  string `json:"tag"`
}

type Tag struct {
	Name   string `json:"name"`
	Target struct {
		URL string `json:"url"`
	} `json:"target"`
}

type Refs struct {
	Tags []Tag `json:"tags"`
}

type Language struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Repository holds the statistics shown on the dashboard.
type Repository struct {
	Name             string       `json:"name"`
	FullName         string       `json:"full_name"`
	Description      string       `json:"description"`
	URL              string       `json:"url"`
	CreatedAt        time.Time    `json:"createdAt"`
	PushedAt         time.Time    `json:"pushedAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	StargazersCount  int          `json:"stargazers_count"`
	ForksCount       int          `json:"forks_count"`
	Watchers         *TotalCount  `json:"watchers"`
	Discussions      *Discussions `json:"discussions"`
	Issues           Items        `json:"issues"`
	IssuesOpen       *Count       `json:"issuesOpen"`
	PullRequests     Items        `json:"pullRequests"`
	PullRequestsOpen *Count       `json:"pullRequestsOpen"`
	Release          *Release     `json:"release"`
	Refs             *Refs        `json:"refs"`
	PrimaryLanguage  *Language    `json:"primaryLanguage"`
}

type viewerData struct {
	RateLimit RateLimit `json:"rateLimit"`
	Viewer    *Viewer   `json:"viewer"`
}

type userData struct {
	RateLimit RateLimit `json:"rateLimit"`
	User      *Owner    `json:"user"`
}

type organizationData struct {
	RateLimit    RateLimit `json:"rateLimit"`
	Organization *Owner    `json:"organization"`
}

type repositoryData struct {
	RateLimit  RateLimit   `json:"rateLimit"`
	Repository *Repository `json:"repository"`
}
