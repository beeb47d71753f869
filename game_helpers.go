package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/player"
	"github.com/sheikhrachel/go-life/ui"
	"github.com/sheikhrachel/go-life/utils"
)

const (
	patternEmpty  = "empty"
	patternRandom = "random"
)

// run validates the configuration, seeds the first grid and hands over to the chosen front end
func run(config utils.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := utils.NewLogger(config)
	if err != nil {
		return err
	}
	defer closeLog()

	grid, err := seedGrid(config)
	if err != nil {
		return err
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "size", config.Size, "pattern", config.Pattern, "headless", config.Headless)
	if config.Headless {
		return runHeadless(ctx, config, logger, grid)
	}
	return runInteractive(ctx, config, logger, grid)
}

// seedGrid builds the starting grid for the configured pattern
func seedGrid(config utils.Config) (*model.Grid, error) {
	grid, err := model.NewGrid(config.Size)
	if err != nil {
		return nil, err
	}

	switch config.Pattern {
	case "", patternEmpty:
		return grid, nil
	case patternRandom:
		return grid.Randomize(config.RandomDensity, config.Seed), nil
	}

	pattern, err := model.LookupPattern(config.Pattern)
	if err != nil {
		return nil, err
	}
	rows, cols := patternExtent(pattern)
	placed := pattern.Translate(max(0, (config.Size-rows)/2), max(0, (config.Size-cols)/2))
	grid, err = grid.WithAlive(placed...)
	return grid, errors.Wrapf(err, "[seedGrid] pattern %q does not fit a %dx%d grid", config.Pattern, config.Size, config.Size)
}

// patternExtent returns the number of rows and columns a pattern spans
func patternExtent(p model.Pattern) (rows, cols int) {
	for _, c := range p {
		rows = max(rows, c.Row+1)
		cols = max(cols, c.Col+1)
	}
	return
}

// runInteractive plays the game in a full screen terminal until the user quits
func runInteractive(ctx context.Context, config utils.Config, logger *slog.Logger, grid *model.Grid) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "[runInteractive] creating screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "[runInteractive] initializing screen")
	}
	defer screen.Fini()

	term := ui.NewTerminal(screen)
	p, err := player.New(config, player.WithLogger(logger), player.OnChange(term.Changed))
	if err != nil {
		return err
	}
	if err = p.Load(grid); err != nil {
		return err
	}
	return term.Run(ctx, p)
}

// runHeadless prints every generation of continuous play until the limit, a signal or a play failure
func runHeadless(ctx context.Context, config utils.Config, logger *slog.Logger, grid *model.Grid) error {
	snapshots := make(chan player.Snapshot, 1)
	p, err := player.New(config,
		player.WithLogger(logger),
		player.OnChange(func(snap player.Snapshot) { offerLatest(snapshots, snap) }),
	)
	if err != nil {
		return err
	}
	if err = p.Load(grid); err != nil {
		return err
	}

	renderer := model.NewTerminalRenderer()
	stats := utils.NewStats()
	displayGameInfo(config, grid)

	eg, egCtx := errgroup.WithContext(ctx)
	playCtx, stopPlay := context.WithCancel(egCtx)
	defer stopPlay()

	// Drive continuous play for as long as the renderer follows it
	eg.Go(func() error {
		p.Start()
		<-playCtx.Done()
		p.Stop()
		return nil
	})

	eg.Go(func() error {
		defer stopPlay()
		var (
			history       model.History
			lastFrameTime = time.Now()
		)
		return followPlay(playCtx, snapshots, config.MaxGenerations, func(snap player.Snapshot) error {
			frameStart := time.Now()
			stats.Update(snap.Generation, snap.Grid.CountLivingCells(), snap.Grid.GetBoundingBoxSize(), frameStart.Sub(lastFrameTime))
			lastFrameTime = frameStart
			return displayGameStatus(renderer, snap, history.Observe(snap.Grid), stats)
		})
	})
	err = eg.Wait()

	fmt.Printf("Final stats: %d generations in %.1f seconds\n", stats.TotalGenerations, stats.Runtime().Seconds())
	fmt.Printf("Average: %.1f gen/sec, %.1f avg population\n", stats.GenerationsPerSecond, stats.AveragePopulation)
	return err
}

// followPlay renders snapshots until ctx ends or maxGenerations is reached (0 means no limit).
// A snapshot carrying a play failure ends it with that failure.
func followPlay(ctx context.Context, snapshots <-chan player.Snapshot, maxGenerations int, render func(player.Snapshot) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-snapshots:
			if snap.Err != nil {
				return snap.Err
			}
			if err := render(snap); err != nil {
				return err
			}

			// Check for max generations limit
			if maxGenerations > 0 && snap.Generation >= maxGenerations {
				fmt.Printf("\n🏁 Reached maximum generations limit (%d)\n", maxGenerations)
				return nil
			}
		}
	}
}

// offerLatest replaces any unread snapshot with snap so a slow renderer only sees the newest state
func offerLatest(ch chan player.Snapshot, snap player.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, grid *model.Grid) {
	fmt.Printf("Features: Parallel: %v | Interval: %s | Max generations: %d\n",
		config.UseParallel, config.Interval, config.MaxGenerations)
	fmt.Printf("Grid: %dx%d | Initial living cells: %d\n",
		grid.Size(), grid.Size(), grid.CountLivingCells())
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// displayGameStatus redraws the screen with the current generation and its status lines
func displayGameStatus(renderer *model.TerminalRenderer, snap player.Snapshot, status model.Status, stats *utils.Stats) error {
	if err := renderer.Clear(); err != nil {
		// not every terminal has clear; keep printing below the last frame
		fmt.Fprintln(os.Stderr, err)
	}
	cells := snap.Grid.Size() * snap.Grid.Size()
	density := float64(stats.ActiveCells) / float64(cells) * 100

	fmt.Printf("Gen: %d | Living: %d | Density: %.1f%% | Status: %s | Bounding box: %d cells\n",
		snap.Generation, stats.ActiveCells, density, status, stats.BoundingBoxSize)
	fmt.Printf("Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime().Seconds())
	fmt.Println()
	return renderer.Display(snap.Grid)
}
