package fakeapi

import (
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"stridekit/internal/adapters/api"
	"stridekit/internal/core/calendar"
	perr "stridekit/internal/platform/errors"
	pnet "stridekit/internal/platform/net"
	phttp "stridekit/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

const maxUpload = 16 << 20

type userData struct {
	activities []api.Activity
	gear       []api.Gear
	weights    []api.Weight
	followers  []api.Follower
}

// GearInput is the body of POST /gear
type GearInput struct {
	Nickname  string  `json:"nickname" validate:"required,max=100"`
	Brand     string  `json:"brand" validate:"omitempty,max=100"`
	Model     string  `json:"model" validate:"omitempty,max=100"`
	Type      int     `json:"gear_type" validate:"min=1,max=4"`
	InitialKm float64 `json:"initial_kms" validate:"gte=0"`
}

var uploadExts = []string{".gpx", ".fit", ".tcx"}

// caller returns the authenticated user id put on the context by Auth
func caller(r *http.Request) int64 {
	id, _ := strconv.ParseInt(pnet.UserID(r.Context()), 10, 64)
	return id
}

// @Summary The authenticated user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Success 200 {object} api.User
// @Failure 401 {object} pnet.ErrorBody "token_expired or token_missing"
// @Router /users/me [get]
func (s *Server) me(r *http.Request) (any, error) {
	uid := caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.ID == uid {
			return acc.User, nil
		}
	}
	return nil, perr.NotFoundf("user %d not found", uid)
}

// listActivities serves both the paged listing and the start/end filter
// @Summary Paged listing, or the activities started in [start, end)
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size" default(10)
// @Param start query string false "RFC 3339 start"
// @Param end query string false "RFC 3339 end"
// @Success 200 {array} api.Activity
// @Failure 400 {object} pnet.ErrorBody
// @Router /activities [get]
func (s *Server) listActivities(r *http.Request) (any, error) {
	q := r.URL.Query()
	if q.Has(api.QueryStart) || q.Has(api.QueryEnd) {
		start, end, err := window(r)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		out := []api.Activity{}
		for _, a := range s.user(caller(r)).activities {
			if !a.StartTime.Before(start) && a.StartTime.Before(end) {
				out = append(out, a)
			}
		}
		slices.SortFunc(out, func(a, b api.Activity) int { return a.StartTime.Compare(b.StartTime) })
		return out, nil
	}

	page, err := positive(q.Get("page"), 1, "page")
	if err != nil {
		return nil, err
	}
	size, err := positive(q.Get("size"), 10, "size")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	all := slices.Clone(s.user(caller(r)).activities)
	s.mu.Unlock()
	slices.SortFunc(all, func(a, b api.Activity) int { return b.StartTime.Compare(a.StartTime) })

	lo := min((page-1)*size, len(all))
	hi := min(lo+size, len(all))
	return api.Page[api.Activity]{Items: all[lo:hi], Total: len(all), Page: page, Size: size}, nil
}

// @Summary One activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param id path int true "Activity id"
// @Success 200 {object} api.Activity
// @Failure 404 {object} pnet.ErrorBody
// @Router /activities/{id} [get]
func (s *Server) activity(r *http.Request) (any, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("activity id must be an integer"), "id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.user(caller(r)).activities {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, perr.NotFoundf("activity %d not found", id)
}

// upload accepts one activity file under the multipart field "file"
// @Summary Upload a gpx, fit or tcx file
// @Tags Activities
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param file formData file true "Activity file"
// @Success 201 {object} api.Activity
// @Failure 400 {object} pnet.ErrorBody
// @Router /activities/upload [post]
func (s *Server) upload(r *http.Request) phttp.Response {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return phttp.Error(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid multipart body"))
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return phttp.Error(perr.WithField(perr.InvalidArgf("file is required"), "file"))
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !slices.Contains(uploadExts, ext) {
		return phttp.Error(perr.WithField(perr.InvalidArgf("unsupported file type %q", ext), "file"))
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return phttp.Error(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read upload"))
	}

	uid := caller(r)
	now := s.opts.Now().UTC()
	s.mu.Lock()
	s.nextID++
	a := api.Activity{
		ID:        s.nextID,
		UserID:    uid,
		Name:      strings.TrimSuffix(hdr.Filename, filepath.Ext(hdr.Filename)),
		Type:      1,
		StartTime: now,
		EndTime:   now,
		Timezone:  "UTC",
	}
	u := s.user(uid)
	u.activities = append(u.activities, a)
	s.uploads[a.ID] = content
	s.mu.Unlock()

	s.Publish(uid, "activity_created", a)
	return phttp.Created(a)
}

// Upload returns the raw file stored for activity id, nil when unknown
func (s *Server) Upload(id int64) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[id]
}

// @Summary All gear
// @Tags Gear
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Success 200 {array} api.Gear
// @Router /gear [get]
func (s *Server) listGear(r *http.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.user(caller(r)).gear), nil
}

// @Summary Register gear
// @Tags Gear
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param payload body GearInput true "Gear"
// @Success 200 {object} api.Gear
// @Failure 400 {object} pnet.ErrorBody
// @Router /gear [post]
func (s *Server) addGear(r *http.Request, in GearInput) (any, error) {
	uid := caller(r)
	s.mu.Lock()
	s.nextID++
	g := api.Gear{
		ID:        s.nextID,
		Nickname:  in.Nickname,
		Brand:     in.Brand,
		Model:     in.Model,
		Type:      in.Type,
		Active:    true,
		InitialKm: in.InitialKm,
	}
	u := s.user(uid)
	u.gear = append(u.gear, g)
	s.mu.Unlock()
	return g, nil
}

// @Summary Weights recorded in [start, end)
// @Tags Health
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param start query string true "RFC 3339 start"
// @Param end query string true "RFC 3339 end"
// @Success 200 {array} api.Weight
// @Failure 400 {object} pnet.ErrorBody
// @Router /health/weight [get]
func (s *Server) listWeights(r *http.Request) (any, error) {
	start, end, err := window(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Weight{}
	for _, w := range s.user(caller(r)).weights {
		day, err := time.Parse(time.DateOnly, w.Date)
		if err != nil {
			continue
		}
		if !day.Before(start) && day.Before(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

// @Summary Followers of the authenticated user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Success 200 {array} api.Follower
// @Router /followers [get]
func (s *Server) listFollowers(r *http.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.user(caller(r)).followers), nil
}

// summary totals the activities that started inside [start, end)
// @Summary Totals of the activities started in [start, end)
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Param period query string true "week, month or year" Enums(week, month, year)
// @Param start query string true "RFC 3339 start"
// @Param end query string true "RFC 3339 end"
// @Success 200 {object} api.Summary
// @Failure 400 {object} pnet.ErrorBody
// @Router /summaries [get]
func (s *Server) summary(r *http.Request) (any, error) {
	p, err := calendar.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return nil, perr.WithField(err, "period")
	}
	start, end, err := window(r)
	if err != nil {
		return nil, err
	}
	out := api.Summary{Period: string(p), Start: start, End: end}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.user(caller(r)).activities {
		if a.StartTime.Before(start) || !a.StartTime.Before(end) {
			continue
		}
		out.Activities++
		out.DistanceM += a.DistanceM
		out.DurationS += a.ElapsedSec
		out.Calories += a.Calories
		out.ElevationM += a.ElevationUp
	}
	return out, nil
}

// user returns the data of uid, creating it; callers hold s.mu
func (s *Server) user(uid int64) *userData {
	u, ok := s.data[uid]
	if !ok {
		u = &userData{}
		s.data[uid] = u
	}
	return u
}

// window parses the required RFC 3339 start and end query parameters
func window(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get(api.QueryStart))
	if err != nil {
		return time.Time{}, time.Time{}, perr.WithField(perr.InvalidArgf("start must be an RFC 3339 time"), api.QueryStart)
	}
	end, err := time.Parse(time.RFC3339, q.Get(api.QueryEnd))
	if err != nil {
		return time.Time{}, time.Time{}, perr.WithField(perr.InvalidArgf("end must be an RFC 3339 time"), api.QueryEnd)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, perr.WithField(perr.InvalidArgf("start must be before end"), api.QueryEnd)
	}
	return start.UTC(), end.UTC(), nil
}

func positive(raw string, def int, field string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a positive integer", field), field)
	}
	return n, nil
}
