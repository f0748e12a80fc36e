//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/trip-planner/internal/bootstrap"
	"github.com/yanqian/trip-planner/internal/domain/itinerary"
	"github.com/yanqian/trip-planner/internal/domain/trip"
	"github.com/yanqian/trip-planner/internal/infra/config"
	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/trip-planner/internal/interface/http"
	"github.com/yanqian/trip-planner/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTripConfig,
		provideItineraryConfig,
		provideChatGPTClient,
		provideSerpAPIClient,
		provideQuoteUpstream,
		provideFlightClient,
		provideHotelClient,
		trip.NewHotelSelector,
		trip.NewPricer,
		trip.NewService,
		itinerary.NewRenderer,
		itinerary.NewService,
		wire.Bind(new(trip.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(itinerary.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(itinerary.ImageClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
