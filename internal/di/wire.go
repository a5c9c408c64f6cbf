//go:build wireinject
// +build wireinject

package di

import (
	"io"

	"github.com/google/wire"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/config"
)

func InitializeApp(cfg *config.Config, logOut io.Writer) (*app.App, error) {
	panic(wire.Build(
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		ServiceSet,
		AppSet,
	))
}
