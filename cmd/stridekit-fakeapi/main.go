// @title       stridekit fake api
// @version     0.1.0
// @description Local stand-in for the activity platform: expiring tokens, resources and live events
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name endurain_access_token

//go:generate swag init --v3.1 -g main.go -d .,../../internal/adapters/fakeapi,../../internal/adapters/api,../../internal/platform/net -o ../../internal/adapters/fakeapi/docs --ot go

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stridekit/internal/adapters/fakeapi"
	"stridekit/internal/adapters/fakeapi/docs"
	"stridekit/internal/platform/config"
	"stridekit/internal/platform/logger"
	phttp "stridekit/internal/platform/net/http"
)

func main() {
	// FAKEAPI_ADDR, FAKEAPI_ACCESS_TTL, ...
	cfg := config.New().Prefix("FAKEAPI_")
	l := logger.Get()

	sig := fakeapi.SignalBoth
	switch strings.ToLower(cfg.MayEnum("EXPIRY_SIGNAL", "both", "both", "code", "challenge")) {
	case "code":
		sig = fakeapi.SignalCode
	case "challenge":
		sig = fakeapi.SignalChallenge
	}

	fake := fakeapi.New(fakeapi.Options{
		AccessTTL:   cfg.MayDuration("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:  cfg.MayDuration("REFRESH_TTL", 7*24*time.Hour),
		Signal:      sig,
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", nil),
	})

	srv := phttp.NewServer(cfg)
	srv.OnShutdown(fake.Close)
	r := srv.Router()
	fake.Mount(r)
	phttp.MountProfiler(r, "/debug", cfg.MayBool("PROFILER", false))
	phttp.MountSwagger(r, "/docs", docs.SwaggerInfo.ReadDoc, cfg.MayBool("SWAGGER", true))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("addr", srv.Addr()).Str("demo_user", fakeapi.DemoUser).Msg("fake api listening")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
