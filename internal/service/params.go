// Package service implements the period-by-period projection pipeline:
// tier transition, revenue attribution, cost allocation, and metrics.
package service

import (
	"github.com/hashguard/forecast/internal/config"
	"github.com/hashguard/forecast/internal/domain/ratecard"
	"github.com/hashguard/forecast/internal/logger"
)

// ServiceParams holds the shared dependencies of all projection services.
type ServiceParams struct {
	Logger   *logger.Logger
	Config   *config.Configuration
	RateCard *ratecard.RateCard
}
