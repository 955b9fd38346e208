package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "warbler"

// Metrics 业务和HTTP指标，注册在独立的 Registry 上
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	Signups         prometheus.Counter
	Logins          *prometheus.CounterVec // result: success, failure, limited
	MessagesPosted  prometheus.Counter
	FollowChanges   *prometheus.CounterVec // action: follow, unfollow
}

// New 创建指标并注册 Go 运行时和进程采集器
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Signups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Total successful signups.",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		MessagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_posted_total",
			Help:      "Total messages successfully posted.",
		}),
		FollowChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_changes_total",
			Help:      "Follow and unfollow operations.",
		}, []string{"action"}),
	}
}

// RegisterDB 采集数据库连接池状态
func (m *Metrics) RegisterDB(db *sql.DB) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, namespace))
}

// Registry 返回底层 Registry（测试中读取指标）
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 导出
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
