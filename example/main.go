// Command example runs a small blog on the request lifecycle, over HTTP or
// from the command line.
package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/example/controllers"
	"github.com/dmitrymomot/mvc/listeners"
	"github.com/dmitrymomot/mvc/middlewares"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

//go:embed files
var files embed.FS

func main() {
	rootCmd := &cobra.Command{
		Use:           "example",
		Short:         "A blog served by the mvc request lifecycle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), runCmd(), routesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithSentry(logger.SentryConfig{
				DSN:         os.Getenv("SENTRY_DSN"),
				Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
				MinLevel:    slog.LevelError,
			}, middlewares.RequestIDExtractor())

			metrics := listeners.NewMetrics(listeners.WithNamespace("blog"))

			app := newApp(log,
				mvc.WithMiddleware(
					middlewares.RequestID(),
					middlewares.Recover(middlewares.WithRecoverLogger(log)),
					middlewares.Timeout(timeout, middlewares.WithTimeoutLogger(log)),
					middlewares.CORS(middlewares.WithAllowOrigins(origins...)),
				),
				mvc.WithStaticFiles("/static/", files, "files/static"),
				mvc.WithMount("/metrics", metrics.Handler()),
				metrics.Option(),
				listeners.NewTracing(listeners.WithTracerName("blog")).Option(),
			)

			return app.Run(addr,
				mvc.WithContext(cmd.Context()),
				mvc.ShutdownTimeout(10*time.Second),
			)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", getEnv("ADDRESS", ":8080"), "Address to listen on")
	cmd.Flags().DurationVar(&timeout, "timeout", middlewares.DefaultTimeout, "Request deadline")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", []string{"*"}, "Allowed CORS origins")

	return cmd
}

func runCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run <uri> [query]",
		Short: "Dispatch one request from the command line",
		Long: `Dispatch one request through the lifecycle and print the response.

The optional query is merged into the request variables:

  example run /posts/create "title=Hello&body=World"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			app := newApp(logger.NewWithWriter(os.Stderr, level))

			status := app.RunCLI(cmd.Context(), cmd.OutOrStdout(), args[0], args[1:])
			if status >= http.StatusBadRequest {
				return fmt.Errorf("request failed with status %d", status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log lifecycle events to stderr")

	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table in matching order",
		Run: func(cmd *cobra.Command, args []string) {
			app := newApp(logger.NewNope())
			for _, def := range app.Routes().Definitions() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", def.Name, def.Pattern)
			}
		},
	}
}

func newApp(log *slog.Logger, extra ...mvc.Option) *mvc.App {
	config, err := fs.Sub(files, "files/config")
	if err != nil {
		panic(err)
	}
	views, err := fs.Sub(files, "files/views")
	if err != nil {
		panic(err)
	}

	store := controllers.NewStore(
		controllers.Post{Title: "Hello", Body: "The first post."},
		controllers.Post{Title: "Routing", Body: "Routes are matched in order, the default one last."},
	)

	opts := []mvc.Option{
		mvc.WithCustomLogger(log),
		mvc.WithConfigFS(config),
		mvc.WithViews(views),
		mvc.WithService(controllers.StoreService, store),
		mvc.WithControllers(
			controllers.Definition(),
			controllers.ErrorsDefinition(),
		),
		mvc.WithLocale(
			mvc.FromQuery("lang"),
			mvc.FromAcceptLanguage("en", "de"),
		),
	}
	return mvc.New(append(opts, extra...)...)
}

// getEnv returns environment variable value or default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
