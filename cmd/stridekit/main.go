package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stridekit/internal/adapters/api"
	"stridekit/internal/adapters/live"
	"stridekit/internal/core/calendar"
	"stridekit/internal/core/version"
	"stridekit/internal/platform/config"
	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	"stridekit/internal/platform/store"
	"stridekit/internal/session"
	"stridekit/internal/session/pgstore"
)

type flags struct {
	mode     string
	user     string
	password string
	path     string
	period   string
	date     string
	firstDay int
	timezone string
	page     int
	size     int
}

func main() {
	var f flags
	flag.StringVar(&f.mode, "mode", "whoami", "login|logout|whoami|get|range|summary|watch")
	flag.StringVar(&f.user, "user", "", "username for -mode login")
	flag.StringVar(&f.password, "password", "", "password for -mode login (default $STRIDEKIT_PASSWORD)")
	flag.StringVar(&f.path, "path", api.PathActivities, "api path for -mode get")
	flag.StringVar(&f.period, "period", "week", "week|month|year for -mode range and summary")
	flag.StringVar(&f.date, "date", "", "reference day YYYY-MM-DD, default today")
	flag.IntVar(&f.firstDay, "first-day", -1, "first day of week 0=Sunday..6=Saturday, default from env, profile or locale")
	flag.StringVar(&f.timezone, "tz", "", "IANA timezone, default $STRIDEKIT_TIMEZONE or the profile's")
	flag.IntVar(&f.page, "page", 1, "page for -mode get on /activities")
	flag.IntVar(&f.size, "size", 10, "page size for -mode get on /activities")
	showVersion := flag.Bool("version", false, "print build info and exit")
	flag.Parse()

	if *showVersion {
		emit(version.Info("stridekit"))
		return
	}

	cfg := config.New().Prefix("STRIDEKIT_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeStore, err := openSessions(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("open session store failed")
	}
	defer closeStore()

	scheme, err := api.ParseAuthScheme(cfg.MayString("AUTH_SCHEME", string(api.SchemeCookie)))
	if err != nil {
		l.Fatal().Err(err).Msg("bad STRIDEKIT_AUTH_SCHEME")
	}
	client, err := api.NewClient(api.Options{
		BaseURL:    baseURL(cfg),
		Scheme:     scheme,
		ClientType: cfg.MayString("CLIENT_TYPE", "web"),
		Timeout:    cfg.MayDuration("HTTP_TIMEOUT", 30*time.Second),
	}, sessions)
	if err != nil {
		l.Fatal().Err(err).Msg("api client setup failed")
	}

	if err := run(ctx, cfg, client, f); err != nil {
		l.Fatal().Err(err).Str("mode", f.mode).Msg("stridekit failed")
	}
}

func run(ctx context.Context, cfg config.Conf, c *api.Client, f flags) error {
	switch f.mode {
	case "login":
		pw := f.password
		if pw == "" {
			pw = cfg.MayString("PASSWORD", "")
		}
		cred, err := c.Login(ctx, f.user, pw)
		if err != nil {
			return err
		}
		emit(map[string]any{"user_id": cred.UserID, "expires_at": cred.ExpiresAt})

	case "logout":
		return c.Logout(ctx)

	case "whoami":
		me, err := c.Me(ctx)
		if err != nil {
			return err
		}
		emit(me)

	case "get":
		if f.path == api.PathActivities {
			page, err := c.ListActivities(ctx, f.page, f.size)
			if err != nil {
				return err
			}
			emit(page)
			return nil
		}
		resp, err := c.Send(ctx, api.Request{Method: http.MethodGet, Path: f.path})
		if err != nil {
			return err
		}
		var v any
		if err := resp.Decode(&v); err != nil {
			return err
		}
		emit(v)

	case "range":
		r, err := resolveRange(ctx, cfg, nil, f)
		if err != nil {
			return err
		}
		emit(map[string]any{"period": r.Period, "start": r.Start, "end": r.End, "days": r.Days()})

	case "summary":
		r, err := resolveRange(ctx, cfg, c, f)
		if err != nil {
			return err
		}
		sum, err := c.Summary(ctx, r)
		if err != nil {
			return err
		}
		acts, err := c.ActivitiesIn(ctx, r)
		if err != nil {
			return err
		}
		emit(map[string]any{"summary": sum, "activities": acts})

	case "watch":
		return watch(ctx, c)

	default:
		return perr.InvalidArgf("unknown -mode %q", f.mode)
	}
	return nil
}

// openSessions picks postgres when STRIDEKIT_SESSION_PG_URL is set, else a file
func openSessions(ctx context.Context, cfg config.Conf) (*session.Manager, func(), error) {
	if url := cfg.MayString("SESSION_PG_URL", ""); url != "" {
		st, err := store.Open(ctx, store.Config{
			AppName: "stridekit",
			PG:      store.PGConfig{Enabled: true, URL: url, MaxConns: 2, LogSQL: cfg.MayBool("SESSION_PG_LOG_SQL", false)},
		}, store.WithLogger(*logger.Get()))
		if err != nil {
			return nil, nil, err
		}
		ps := pgstore.New(st.PG, cfg.MayString("SESSION_PROFILE", pgstore.DefaultProfile))
		if err := ps.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		return session.NewManager(ps), func() { _ = st.Close() }, nil
	}

	path := cfg.MayString("SESSION_FILE", "")
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	return session.NewManager(session.NewFileStore(path)), func() {}, nil
}

func baseURL(cfg config.Conf) string {
	if u := cfg.MayURL("API_URL", ""); u != "" {
		return u
	}
	proto := strings.ToLower(cfg.MayEnum("API_PROTOCOL", "http", "http", "https"))
	return proto + "://" + cfg.MayString("API_HOST", "localhost:8087")
}

// resolveRange fills the first day and timezone from flags, then env, then
// the user's profile when a client is given, then the locale
func resolveRange(ctx context.Context, cfg config.Conf, c *api.Client, f flags) (calendar.Range, error) {
	q := calendar.RangeQuery{Period: f.period, Date: f.date, Timezone: f.timezone}
	if q.Timezone == "" {
		q.Timezone = cfg.MayString("TIMEZONE", "")
	}
	first := f.firstDay
	if first < 0 {
		first = cfg.MayWeekday("FIRST_DAY", -1)
	}

	if c != nil && (first < 0 || q.Timezone == "") {
		me, err := c.Me(ctx)
		if err != nil {
			return calendar.Range{}, err
		}
		if first < 0 && me.FirstDayOfWeek != nil {
			first = *me.FirstDayOfWeek
		}
		if q.Timezone == "" {
			q.Timezone = me.Timezone
		}
	}
	if first < 0 {
		// POSIX locales look like en_US.UTF-8
		tag, _, _ := strings.Cut(cfg.MayString("LOCALE", os.Getenv("LANG")), ".")
		first = int(calendar.FirstDayForLocale(strings.ReplaceAll(tag, "_", "-")))
	}
	q.FirstDay = &first
	return q.Resolve(time.Now())
}

func watch(ctx context.Context, c *api.Client) error {
	cred, err := c.Sessions().Get(ctx)
	if err != nil {
		return err
	}
	ch := live.New(c, func(_ context.Context, ev live.Event) { emit(ev) })
	ch.Attach(c.Sessions())
	if err := ch.Open(ctx, cred.UserID); err != nil {
		return err
	}
	defer ch.Close()

	logger.Get().Info().Str("user_id", cred.UserID).Msg("watching live events, ctrl-c to stop")
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if !ch.Connected() {
				return perr.New(perr.ErrorCodeUnavailable, "live channel closed by server")
			}
		}
	}
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
