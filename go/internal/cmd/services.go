package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
	"github.com/michalkopec1981/saper-gra/go/internal/gametimer"
	"github.com/michalkopec1981/saper-gra/go/internal/gateway"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
	"github.com/michalkopec1981/saper-gra/go/internal/natsbus"
	"github.com/michalkopec1981/saper-gra/go/internal/player"
	"github.com/michalkopec1981/saper-gra/go/internal/qrcode"
	"github.com/michalkopec1981/saper-gra/go/internal/question"
	"github.com/michalkopec1981/saper-gra/go/internal/scan"
	"github.com/michalkopec1981/saper-gra/go/internal/session"
	"github.com/michalkopec1981/saper-gra/go/internal/settings"
)

type Services struct {
	Timer    *gametimer.Timer
	Hub      *gateway.Hub
	Consumer *natsbus.Consumer
	natsConn *nats.Conn

	PlayerHandler   *player.Handler
	QuestionHandler *question.Handler
	ScanHandler     *scan.Handler
	SessionHandler  *session.Handler
	QRCodeHandler   *qrcode.Handler
}

// stateProvider defers the hub's catch-up source to the session app,
// which is constructed after the hub (the session app publishes into
// the hub-backed bus).
type stateProvider struct {
	app *session.App
}

func (p *stateProvider) CatchUp(ctx context.Context) ([]events.Event, error) {
	if p.app == nil {
		return nil, nil
	}
	return p.app.CatchUp(ctx)
}

func setupServices(ctx context.Context, db *sql.DB, cfg *Config) (*Services, error) {
	validate := validator.New()
	clock := clockwork.NewRealClock()

	playerRepo := player.NewRepository(db)
	questionRepo := question.NewRepository(db)
	qrRepo := qrcode.NewRepository(db)
	scanRepo := scan.NewRepository(db)
	settingsRepo := settings.NewRepository(db)
	sessionRepo := session.NewRepository(db)

	if err := settingsRepo.EnsureDefaults(ctx, map[string]string{
		models.SettingGameActive:   "False",
		models.SettingPassword:     cfg.Game.Password,
		models.SettingTetrisActive: "False",
	}); err != nil {
		return nil, fmt.Errorf("failed to bootstrap settings: %w", err)
	}

	provider := &stateProvider{}
	hub := gateway.NewHub(provider, gateway.DefaultConfig())

	// With NATS configured, events flow API -> NATS -> hub, so external
	// display processes can subscribe to the same subjects. Without it,
	// apps publish straight into the hub.
	var (
		bus      events.Bus = hub
		consumer *natsbus.Consumer
		natsConn *nats.Conn
	)
	if cfg.NATS.URL != "" {
		natsCfg := natsbus.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		nc, err := natsbus.Connect(natsCfg)
		if err != nil {
			return nil, err
		}
		natsConn = nc
		bus = natsbus.NewPublisher(nc, natsCfg.SubjectPrefix)
		consumer = natsbus.NewConsumer(nc, hub, natsCfg.SubjectPrefix)
	}

	timer := gametimer.New(clock, bus)

	sessionCfg := session.DefaultConfig()
	sessionCfg.DefaultWhiteCodes = cfg.Game.DefaultWhiteCodes
	sessionCfg.DefaultRedCodes = cfg.Game.DefaultRedCodes
	sessionCfg.DefaultMinutes = cfg.Game.DefaultMinutes
	sessionCfg.FallbackPassword = cfg.Game.Password
	sessionApp := session.NewApp(sessionRepo, playerRepo, settingsRepo, timer, bus, sessionCfg)
	provider.app = sessionApp

	scanCfg := scan.DefaultConfig()
	scanCfg.Cooldown = time.Duration(cfg.Game.CooldownMinutes) * time.Minute
	scanApp := scan.NewApp(playerRepo, questionRepo, qrRepo, settingsRepo, scanRepo, sessionApp, bus, clock, scanCfg)

	playerApp := player.NewApp(playerRepo, sessionApp, bus)
	questionApp := question.NewApp(questionRepo)

	return &Services{
		Timer:    timer,
		Hub:      hub,
		Consumer: consumer,
		natsConn: natsConn,

		PlayerHandler:   player.NewHandler(playerApp, validate),
		QuestionHandler: question.NewHandler(questionApp, validate),
		ScanHandler:     scan.NewHandler(scanApp, validate),
		SessionHandler:  session.NewHandler(sessionApp, validate),
		QRCodeHandler:   qrcode.NewHandler(qrRepo),
	}, nil
}

// Close releases long-lived service resources.
func (s *Services) Close() {
	if s.natsConn != nil {
		s.natsConn.Close()
	}
}
