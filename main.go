package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"wavepoll/airthings"
	"wavepoll/airthings/output"
	"wavepoll/airthings/waveplus"
	"wavepoll/config"
)

var cli struct {
	SerialNumber string `arg:"" help:"10-digit serial number found under the magnetic backplate of the Wave Plus."`
	Mode         string `arg:"" enum:"terminal,pipe" help:"terminal redraws a table in place; pipe emits one CSV line per reading."`

	Config        string        `help:"Optional YAML config file with runtime tunables." placeholder:"PATH"`
	SamplePeriod  time.Duration `help:"Interval between sensor reads (default 5m)."`
	ScanTimeout   time.Duration `help:"Advertisement scan window (default 10s)."`
	Retries       int           `help:"Connect attempts before giving up (default 5)."`
	ListenAddress string        `help:"Expose Prometheus metrics on this address (e.g. :8080)." placeholder:"ADDR"`
	Verbose       bool          `short:"v" help:"Enable debug logging."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("wavepoll"),
		kong.Description("Polls an Airthings Wave Plus over BLE and streams its readings."),
	)

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(); err != nil {
		log.Fatalf("%s", err)
	}
}

func run() error {
	// validated before any radio activity
	if err := airthings.ValidateSerialNumber(cli.SerialNumber); err != nil {
		return err
	}

	cfg := config.Default()
	if cli.Config != "" {
		var err error
		cfg, err = config.Load(cli.Config)
		if err != nil {
			return err
		}
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ListenAddress != "" {
		serveMetrics(cfg.ListenAddress)
	}

	device, err := linux.NewDevice()
	if err != nil {
		return errors.Wrap(err, "failed to open ble")
	}
	ble.SetDefaultDevice(device)
	defer func() {
		_ = ble.Stop()
	}()

	proto := waveplus.DefaultProtocol()

	locator := waveplus.NewLocator(proto, cfg.ScanTimeout())
	addr, err := locator.Locate(ctx, cli.SerialNumber)
	if err != nil {
		return ignoreCanceled(err)
	}
	log.Infof("serial number %s resolved to %s", cli.SerialNumber, addr)

	transport := &waveplus.Transport{Proto: proto, ConnectTimeout: cfg.ConnectTimeout()}
	conn := airthings.NewConnectionManager(transport, addr, cfg.Retries, cfg.Backoff(), cfg.ReadTimeout())

	poller := &airthings.Poller{
		Conn:     conn,
		Decode:   proto.Decode,
		Sink:     buildSink(cfg),
		Interval: cfg.SamplePeriod(),
	}
	return poller.Run(ctx)
}

// ignoreCanceled maps cancellation-caused errors to a clean exit so
// an interrupt during the initial scan behaves the same as one during
// polling.
func ignoreCanceled(err error) error {
	if errors.Cause(err) == context.Canceled {
		return nil
	}
	return err
}

func applyFlags(cfg *config.Config) {
	if cli.SamplePeriod > 0 {
		cfg.SamplePeriodMs = int(cli.SamplePeriod.Milliseconds())
	}
	if cli.ScanTimeout > 0 {
		cfg.ScanTimeoutMs = int(cli.ScanTimeout.Milliseconds())
	}
	if cli.Retries > 0 {
		cfg.Retries = cli.Retries
	}
	if cli.ListenAddress != "" {
		cfg.ListenAddress = cli.ListenAddress
	}
}

func buildSink(cfg config.Config) airthings.Sink {
	var primary airthings.Sink
	switch cli.Mode {
	case "pipe":
		primary = output.NewPipeSink(os.Stdout)
	default:
		primary = output.NewTerminalSink(os.Stdout, cli.SerialNumber)
	}

	if cfg.ListenAddress == "" {
		return primary
	}
	metrics := output.NewMetricsSink(prometheus.DefaultRegisterer, cli.SerialNumber)
	return airthings.Fanout{primary, metrics}
}

func serveMetrics(addr string) {
	prometheus.MustRegister(collectors.NewBuildInfoCollector())
	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		log.Panic(http.ListenAndServe(addr, nil))
	}()
}
