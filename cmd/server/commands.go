package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/generator"
	"github.com/GriffinCanCode/PostGen/backend/internal/shared/id"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	genTone     string
	genPlatform string
)

var generateCmd = &cobra.Command{
	Use:   "generate <product-url>",
	Short: "Generate one post and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		services, err := server.NewServices(cfg, nil, nil, logger.Logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = tracing.WithRequestID(ctx, id.NewRequestID().String())

		res, err := services.Generator.Generate(ctx, post.GenerationRequest{
			ProductURL: args[0],
			Tone:       genTone,
			Platform:   genPlatform,
		}, func(stage generator.Stage) {
			logger.Info("generation progress", zap.String("stage", string(stage)))
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var (
	pubText     string
	pubTitle    string
	pubImage    string
	pubURL      string
	pubPlatform string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Forward a post to the configured webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		services, err := server.NewServices(cfg, nil, nil, logger.Logger)
		if err != nil {
			return err
		}

		req := post.PublishRequest{
			ProductURL: pubURL,
			Platform:   pubPlatform,
			PostText:   pubText,
		}
		if cmd.Flags().Changed("title") {
			req.Title = &pubTitle
		}
		if cmd.Flags().Changed("image") {
			req.ImageURL = &pubImage
		}

		ctx := tracing.WithRequestID(cmd.Context(), id.NewRequestID().String())
		res, err := services.Publisher.Publish(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	generateCmd.Flags().StringVar(&genTone, "tone", string(post.DefaultTone), "post tone (promo, neutral, playful)")
	generateCmd.Flags().StringVar(&genPlatform, "platform", string(post.DefaultPlatform), "target platform")

	publishCmd.Flags().StringVar(&pubText, "text", "", "post text")
	publishCmd.Flags().StringVar(&pubTitle, "title", "", "post title")
	publishCmd.Flags().StringVar(&pubImage, "image", "", "image URL or data URI")
	publishCmd.Flags().StringVar(&pubURL, "url", "", "product URL")
	publishCmd.Flags().StringVar(&pubPlatform, "platform", string(post.DefaultPlatform), "target platform")
	_ = publishCmd.MarkFlagRequired("text")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
