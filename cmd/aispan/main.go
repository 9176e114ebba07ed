// AI span post-processor for OpenTelemetry traces
// Classifies GenAI spans, rewrites them to the OpenInference schema, and
// reparents them into contiguous AI subtrees before export
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/andrewh/aispan/pkg/aiproc"
	"github.com/andrewh/aispan/pkg/scenario"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "aispan",
		Short:        "AI span post-processor for OpenTelemetry traces",
		SilenceUsage: true,
	}

	root.AddCommand(demoCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(versionCmd())

	return root
}

func demoCmd() *cobra.Command {
	var (
		endpoint string
		stdout   bool
		protocol string
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "demo [scenario.yaml]",
		Short: "Emit a synthetic GenAI trace through the processor",
		Long: "Emit a synthetic GenAI trace through the processor.\n\n" +
			"Without a scenario file, the built-in demo scenario is used. Spans pass\n" +
			"through the AI span processor before export, so the output shows the\n" +
			"transformed OpenInference spans; use --raw to export the source spans\n" +
			"untouched instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *scenario.Config
				err error
			)
			if len(args) == 1 {
				cfg, err = scenario.Load(args[0])
			} else {
				cfg, err = scenario.Default()
			}
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cfg, demoOptions{
				endpoint: endpoint,
				stdout:   stdout,
				protocol: protocol,
				raw:      raw,
			})
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OTLP endpoint (e.g. localhost:4318)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "emit spans to stdout as JSON")
	cmd.Flags().StringVar(&protocol, "protocol", "http/protobuf", "OTLP protocol (http/protobuf or grpc)")
	cmd.Flags().BoolVar(&raw, "raw", false, "export source spans without AI post-processing")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "aispan %s (commit: %s, built: %s)\n", version, commit, buildTime)
		},
	}
}

type demoOptions struct {
	endpoint string
	stdout   bool
	protocol string
	raw      bool
}

const (
	shutdownTimeout     = 5 * time.Second
	connectCheckTimeout = 2 * time.Second
	defaultHTTPPort     = "4318"
	defaultGRPCPort     = "4317"
)

func checkEndpoint(endpoint, protocol string) error {
	host := endpoint
	if host == "" {
		port := defaultHTTPPort
		if protocol == "grpc" {
			port = defaultGRPCPort
		}
		host = "localhost:" + port
	} else if _, _, err := net.SplitHostPort(host); err != nil {
		port := defaultHTTPPort
		if protocol == "grpc" {
			port = defaultGRPCPort
		}
		host = net.JoinHostPort(host, port)
	}

	conn, err := net.DialTimeout("tcp", host, connectCheckTimeout)
	if err != nil {
		return fmt.Errorf("cannot reach OTLP collector at %s\n\n"+
			"To emit spans as JSON to the terminal, use --stdout:\n"+
			"  aispan demo --stdout\n\n"+
			"To send to a specific collector, use --endpoint:\n"+
			"  aispan demo --endpoint collector.example.com:4318", host)
	}
	_ = conn.Close()
	return nil
}

func runDemo(ctx context.Context, cfg *scenario.Config, opts demoOptions) error {
	if err := validateProtocol(opts.protocol); err != nil {
		return err
	}
	if !opts.stdout {
		if err := checkEndpoint(opts.endpoint, opts.protocol); err != nil {
			return err
		}
	}

	exporter, err := createTraceExporter(ctx, opts)
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}

	var sp sdktrace.SpanProcessor
	if opts.raw {
		sp = sdktrace.NewSimpleSpanProcessor(exporter)
	} else {
		sp = aiproc.New(exporter)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", "aispan-demo"),
		attribute.String("aispan.version", version),
	))
	if err != nil {
		return fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sp),
		sdktrace.WithResource(res),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "error shutting down tracer provider: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return scenario.NewEmitter(tp.Tracer("aispan")).Emit(ctx, cfg)
}

var validProtocols = map[string]bool{
	"http/protobuf": true,
	"grpc":          true,
}

func validateProtocol(p string) error {
	if !validProtocols[p] {
		return fmt.Errorf("unsupported protocol %q, supported: http/protobuf, grpc", p)
	}
	return nil
}

func createTraceExporter(ctx context.Context, opts demoOptions) (sdktrace.SpanExporter, error) {
	if opts.stdout {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	}
	switch opts.protocol {
	case "grpc":
		var grpcOpts []otlptracegrpc.Option
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(opts.endpoint), otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	case "http/protobuf", "":
		var httpOpts []otlptracehttp.Option
		if opts.endpoint != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(opts.endpoint), otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q, supported: http/protobuf, grpc", opts.protocol)
	}
}
