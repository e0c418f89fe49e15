package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/chamada/internal/app"
	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/database"
)

// openEngine connects to the database and wires the engine. The returned
// close func releases the pool.
func openEngine(ctx context.Context, opts ...app.Option) (*app.App, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := app.New(ctx, cfg, pool, logger, append([]app.Option{app.WithoutHub()}, opts...)...)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return engine, cfg, pool.Close, nil
}

func newBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// progressDevice ticks a progress bar for every frame its source yields.
type progressDevice struct {
	capture.Device
	bar *progressbar.ProgressBar
}

func (d *progressDevice) Open(ctx context.Context) (capture.Source, error) {
	src, err := d.Device.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &progressSource{Source: src, bar: d.bar}, nil
}

type progressSource struct {
	capture.Source
	bar *progressbar.ProgressBar
}

func (s *progressSource) Next(ctx context.Context) (capture.Frame, error) {
	f, err := s.Source.Next(ctx)
	if err == nil {
		_ = s.bar.Add(1)
	}
	return f, err
}

func (s *progressSource) Close() error {
	_ = s.bar.Finish()
	return s.Source.Close()
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}
