package api

import (
	"encoding/json"
	"time"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// envelope is the success wrapper of every API route
type envelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
	Rows json.RawMessage `json:"rows"`
	Item json.RawMessage `json:"item"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// World is the client view of a hydrated world; detail subtrees stay raw
type World struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Eras        []Era     `json:"eras"`
	Settings    []Setting `json:"settings"`
	Markers     []Marker  `json:"markers"`
}

type Era struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	StartYear   *int64            `json:"startYear"`
	EndYear     *int64            `json:"endYear"`
	OrderIndex  int               `json:"orderIndex"`
	Governments []json.RawMessage `json:"governments"`
	Catalysts   []json.RawMessage `json:"catalysts"`
}

type Setting struct {
	ID    int64  `json:"id"`
	EraID *int64 `json:"eraId"`
	Name  string `json:"name"`
}

type Marker struct {
	ID    int64  `json:"id"`
	EraID *int64 `json:"eraId"`
	Name  string `json:"name"`
	Year  *int64 `json:"year"`
}

// Deleted is returned by delete routes
type Deleted struct {
	ID int64 `json:"id"`
}
