package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"stridekit/internal/core/calendar"
	perr "stridekit/internal/platform/errors"
)

// Resource paths
const (
	PathMe         = "/users/me"
	PathActivities = "/activities"
	PathUpload     = "/activities/upload"
	PathGear       = "/gear"
	PathWeight     = "/health/weight"
	PathFollowers  = "/followers"
	PathSummaries  = "/summaries"
)

// Range query keys the server filters on
const (
	QueryStart = "start"
	QueryEnd   = "end"
)

func get[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	var out T
	err := c.JSON(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, &out)
	return out, err
}

// Me returns the logged in user
func (c *Client) Me(ctx context.Context) (User, error) {
	return get[User](ctx, c, PathMe, nil)
}

// ListActivities pages through the user's activities, newest first. page starts at 1.
func (c *Client) ListActivities(ctx context.Context, page, size int) (Page[Activity], error) {
	if page < 1 || size < 1 {
		return Page[Activity]{}, perr.InvalidArgf("page and size must be positive, got %d/%d", page, size)
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return get[Page[Activity]](ctx, c, PathActivities, q)
}

// ActivitiesIn lists activities that started inside r
func (c *Client) ActivitiesIn(ctx context.Context, r calendar.Range) ([]Activity, error) {
	return get[[]Activity](ctx, c, PathActivities, r.Query(QueryStart, QueryEnd))
}

// Activity fetches one activity
func (c *Client) Activity(ctx context.Context, id int64) (Activity, error) {
	return get[Activity](ctx, c, fmt.Sprintf("%s/%d", PathActivities, id), nil)
}

// UploadActivity sends a .gpx/.fit file as multipart form data
func (c *Client) UploadActivity(ctx context.Context, filename string, content io.Reader) (Activity, error) {
	if filename == "" || content == nil {
		return Activity{}, perr.InvalidArgf("filename and content are required")
	}
	var out Activity
	err := c.JSON(ctx, Request{
		Method: http.MethodPost,
		Path:   PathUpload,
		Kind:   BodyMultipart,
		Body:   Multipart{Files: []FilePart{{Field: "file", Filename: filename, Content: content}}},
	}, &out)
	return out, err
}

// ListGear returns the user's gear
func (c *Client) ListGear(ctx context.Context) ([]Gear, error) {
	return get[[]Gear](ctx, c, PathGear, nil)
}

// GearInput describes new gear
type GearInput struct {
	Nickname  string  `json:"nickname"`
	Brand     string  `json:"brand,omitempty"`
	Model     string  `json:"model,omitempty"`
	Type      int     `json:"gear_type"`
	InitialKm float64 `json:"initial_kms,omitempty"`
}

// AddGear registers new gear and returns it with its id
func (c *Client) AddGear(ctx context.Context, in GearInput) (Gear, error) {
	var out Gear
	err := c.JSON(ctx, Request{Method: http.MethodPost, Path: PathGear, Body: in}, &out)
	return out, err
}

// HealthWeights returns weight measurements inside r
func (c *Client) HealthWeights(ctx context.Context, r calendar.Range) ([]Weight, error) {
	return get[[]Weight](ctx, c, PathWeight, r.Query(QueryStart, QueryEnd))
}

// Followers returns who follows the logged in user
func (c *Client) Followers(ctx context.Context) ([]Follower, error) {
	return get[[]Follower](ctx, c, PathFollowers, nil)
}

// Summary aggregates the user's activities over r
func (c *Client) Summary(ctx context.Context, r calendar.Range) (Summary, error) {
	q := r.Query(QueryStart, QueryEnd)
	q.Set("period", string(r.Period))
	return get[Summary](ctx, c, PathSummaries, q)
}
