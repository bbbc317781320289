// Package session holds the mutable state of one interactive client
package session

import "worldforge/internal/client/api"

type Session struct {
	APIBaseURL   string
	Client       *api.Client
	AuthToken    string
	UserID       string
	Username     string
	CurrentWorld *api.World
	Verbose      bool
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
	}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool        { return s.Verbose }

// SetAuth stores the session token and identity; empty values log out
func (s *Session) SetAuth(token, userID, username string) {
	s.AuthToken = token
	s.UserID = userID
	s.Username = username
	s.Client.SetToken(token)
}

func (s *Session) GetAuthToken() string { return s.AuthToken }
func (s *Session) GetUsername() string  { return s.Username }

func (s *Session) GetCurrentWorld() *api.World { return s.CurrentWorld }

// SetCurrentWorld replaces the open world; nil closes it
func (s *Session) SetCurrentWorld(w *api.World) {
	s.CurrentWorld = w
}
