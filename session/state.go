package session

// State is the authentication state of the dashboard.
type State int

const (
	NotAuthorized State = iota
	Authenticating
	Authenticated
	// NoRepository is Authenticated without a persisted repository selector.
	NoRepository
)

func (s State) String() string {
	switch s {
	case NotAuthorized:
		return "Not Authorized"
	case Authenticating:
		return "Authenticating"
	case Authenticated:
		return "Authenticated"
	case NoRepository:
		return "No Repository"
	default:
		return "Unknown"
	}
}

// Authorized reports whether a token has been adopted.
func (s State) Authorized() bool {
	return s == Authenticated || s == NoRepository
}

// Alerts shown to the user.
const (
	AlertAuthenticate   = "Could not authenticate with GitHub."
	AlertFetchUser      = "Could not fetch user data."
	AlertFetchRepo      = "Could not fetch repository data."
	alertAuthenticateAs = "Could not authenticate with GitHub: "
)
