//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/solar-dashboard/internal/bootstrap"
	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/infra/config"
	"github.com/yanqian/solar-dashboard/internal/infra/predictor/solarapi"
	httpiface "github.com/yanqian/solar-dashboard/internal/interface/http"
	"github.com/yanqian/solar-dashboard/pkg/logger"
	"github.com/yanqian/solar-dashboard/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideDashboardConfig,
		providePredictor,
		provideObserver,
		provideHistoryRepository,
		provideStateStore,
		provideEventPublisher,
		provideReportArchive,
		provideTokenValidator,
		dashboard.NewService,
		wire.Bind(new(dashboard.Predictor), new(*solarapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
