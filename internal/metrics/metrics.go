// Package metrics 运行时指标（Prometheus）。
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 进程内指标集合，每个实例有独立的 Registry
type Metrics struct {
	Registry *prometheus.Registry

	Transitions  *prometheus.CounterVec
	TrayActive   prometheus.Gauge
	ConfigApply  *prometheus.CounterVec
	HotkeyRebind *prometheus.CounterVec
	HotkeyFires  prometheus.Counter
	LogClears    prometheus.Counter
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anan_window_transitions_total",
			Help: "Window state transitions by from/to state.",
		}, []string{"from", "to"}),
		TrayActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "anan_tray_icons_active",
			Help: "Number of live tray icons (0 or 1).",
		}),
		ConfigApply: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anan_config_apply_total",
			Help: "Config apply attempts by result.",
		}, []string{"result"}),
		HotkeyRebind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anan_hotkey_rebind_total",
			Help: "Global hotkey registrations by result.",
		}, []string{"result"}),
		HotkeyFires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anan_hotkey_fires_total",
			Help: "Hotkey presses that ran the automation action.",
		}),
		LogClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anan_log_clears_total",
			Help: "Times the log view was cleared.",
		}),
	}

	reg.MustRegister(
		m.Transitions,
		m.TrayActive,
		m.ConfigApply,
		m.HotkeyRebind,
		m.HotkeyFires,
		m.LogClears,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Result 把 error 转成 result 标签
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve 在 addr 上提供 /metrics，ctx 结束时关闭
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("📈 指标服务已启动", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
