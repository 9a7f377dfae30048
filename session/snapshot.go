package session

import (
	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/selection"
)

// Snapshot is a point-in-time copy of the session values.
type Snapshot struct {
	State        State
	Alert        string
	AuthorizeURL string
	Loading      bool
	Viewer       *github.Viewer
	Selector     *selection.Selector
	Owner        *github.Owner
	Repository   *github.Repository
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:        c.State.Get(),
		Alert:        c.Alert.Get(),
		AuthorizeURL: c.AuthorizeURL.Get(),
		Loading:      c.Loading.Get(),
		Viewer:       c.Viewer.Get(),
		Selector:     c.Selector.Get(),
		Owner:        c.Owner.Get(),
		Repository:   c.Repository.Get(),
	}
}

// OnChange calls fn after any session value changes.
func (c *Controller) OnChange(fn func()) (unsubscribe func()) {
	unsubs := []func(){
		c.State.Subscribe(func(State) { fn() }),
		c.Alert.Subscribe(func(string) { fn() }),
		c.AuthorizeURL.Subscribe(func(string) { fn() }),
		c.Loading.Subscribe(func(bool) { fn() }),
		c.Viewer.Subscribe(func(*github.Viewer) { fn() }),
		c.Selector.Subscribe(func(*selection.Selector) { fn() }),
		c.Owner.Subscribe(func(*github.Owner) { fn() }),
		c.Repository.Subscribe(func(*github.Repository) { fn() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
