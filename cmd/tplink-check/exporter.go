package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
	"github.com/swoga/tplink-check/api"
	"github.com/swoga/tplink-check/cache"
	"github.com/swoga/tplink-check/collector"
	"github.com/swoga/tplink-check/config"
	"github.com/swoga/tplink-check/parser"
	"go.uber.org/zap"
)

func init() {
	prometheus.MustRegister(versioncollector.NewCollector("tplink_check"))
}

type exporter struct {
	log      *zap.Logger
	sc       *config.SafeConfig
	sessions *cache.Cache[session]
	parser   *parser.Parser
}

// session binds a client to the device config it was built from, a config
// reload replaces the device and with it the client.
type session struct {
	device *config.Device
	client *api.Client
}

func newExporter(log *zap.Logger, sc *config.SafeConfig) *exporter {
	return &exporter{
		log:      log,
		sc:       sc,
		sessions: cache.New[session](),
		parser:   parser.New(),
	}
}

func exporterCommand(stderr io.Writer) *cobra.Command {
	var (
		configFile string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   "exporter",
		Short: "Serve switch port statistics as prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zap.InfoLevel
			if debug {
				level = zap.DebugLevel
			}
			log := newLogger(stderr, level)
			defer log.Sync()
			return runExporter(log, configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config.file", "tplink-check.yml", "exporter configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runExporter(log *zap.Logger, configFile string) error {
	log.Info("starting tplink-check exporter", zap.String("version", version.Version), zap.String("revision", version.Revision))

	// inital config load
	sc := config.New(configFile)
	if err := sc.LoadConfig(); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	e := newExporter(log, sc)

	// setup config reload
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	reloadRequest := make(chan chan error)
	go func() {
		for {
			var err error
			select {
			case <-hup:
				log.Debug("config reload triggerd by SIGHUP")
				err = sc.LoadConfig()
			case reloadResult := <-reloadRequest:
				log.Debug("config reload triggerd by API")
				err = sc.LoadConfig()
				reloadResult <- err
			}
			if err != nil {
				log.Error("error reloading config", zap.Error(err))
			} else {
				log.Info("reloaded config file")
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/-/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "use POST to reload", http.StatusMethodNotAllowed)
			return
		}
		reloadResult := make(chan error)
		reloadRequest <- reloadResult
		err := <-reloadResult
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to reload config: %s", err), http.StatusInternalServerError)
		}
	})

	// start http server
	config := sc.Get()
	mux.Handle(config.MetricsPath, promhttp.Handler())
	mux.HandleFunc(config.ProbePath, e.handleProbe)

	log.Info("starting http server", zap.String("metrics_path", config.MetricsPath), zap.String("probe_path", config.ProbePath), zap.String("listen", config.Listen))

	srv := &http.Server{
		Addr:              config.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (e *exporter) handleProbe(w http.ResponseWriter, r *http.Request) {
	config := e.sc.Get()
	target := r.URL.Query().Get("target")
	if target == "" {
		e.log.Error("request with missing target")
		http.Error(w, "?target= missing", http.StatusBadRequest)
		return
	}

	log := e.log.With(zap.String("target", target))

	device, ok := config.Devices[target]
	if !ok {
		log.Error("unknown target")
		http.Error(w, "unknown target", http.StatusBadRequest)
		return
	}

	timeout := getTimeout(config, r)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout*float64(time.Second)))
	defer cancel()
	r = r.WithContext(ctx)

	start := time.Now()
	registry := prometheus.NewRegistry()
	exporterRegistry := prometheus.WrapRegistererWithPrefix("tplink_check_", registry)

	err := e.probeDevice(ctx, log, target, device, exporterRegistry)
	var success float64 = 1
	if err != nil {
		log.Error("error probing device", zap.Error(err))
		success = 0
	}

	probeDurationGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "probe_duration_seconds",
		Help: "Returns how long the probe took to complete in seconds",
	})
	registry.MustRegister(probeDurationGauge)
	duration := time.Since(start).Seconds()
	probeDurationGauge.Set(duration)

	probeSuccessGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "probe_success",
		Help: "Displays whether or not the probe was a success",
	})
	registry.MustRegister(probeSuccessGauge)
	probeSuccessGauge.Set(success)

	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h.ServeHTTP(w, r)
}

// getTimeout prefers the scrape timeout prometheus announces in its request.
func getTimeout(config *config.Config, r *http.Request) float64 {
	value := r.Header.Get("X-Prometheus-Scrape-Timeout-Seconds")
	if value != "" {
		timeout, err := strconv.ParseFloat(value, 64)
		if err == nil && timeout > 0 {
			return timeout
		}
	}
	return config.Timeout
}

func (e *exporter) probeDevice(ctx context.Context, log *zap.Logger, target string, device *config.Device, registry prometheus.Registerer) error {
	client, err := e.client(log, target, device)
	if err != nil {
		return err
	}

	body, err := client.FetchStatusPage(ctx)
	if err != nil {
		// start over with a fresh client on the next scrape
		e.sessions.Remove(target)
		return err
	}

	statistics, err := e.parser.Parse(body)
	if err != nil {
		return err
	}

	return collector.AddMetrics(registry, *statistics)
}

// client returns the cached client of target, creating it on first use.
func (e *exporter) client(log *zap.Logger, target string, device *config.Device) (*api.Client, error) {
	if s, ok := e.sessions.Get(target); ok && s.device == device {
		return s.client, nil
	}

	password, err := device.ResolvePassword()
	if err != nil {
		return nil, err
	}
	opts := api.Options{
		Address:  device.Address,
		Password: password,
	}
	if device.Username != nil {
		opts.Username = *device.Username
	}
	if device.SendCPassword != nil {
		opts.SendCPassword = *device.SendCPassword
	}

	client, err := api.NewClient(log, opts)
	if err != nil {
		return nil, err
	}
	e.sessions.Set(target, session{device: device, client: client})
	return client, nil
}
