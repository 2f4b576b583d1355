package usecase

import (
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/events"
	"cinema-tickets/pkg/cache"
	"cinema-tickets/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Catalog CatalogService
	Show    ShowService
	Booking BookingService
}

func NewService(repo *repository.Repository, config *utils.Config, cache *cache.Service, publisher *events.Publisher, log *zap.Logger) *Service {
	showSrv := NewShowService(repo, cache, log)
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Catalog: NewCatalogService(repo, cache, log),
		Show:    showSrv,
		Booking: NewBookingService(repo, config, showSrv, publisher, log),
	}
}
