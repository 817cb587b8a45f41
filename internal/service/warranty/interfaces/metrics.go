// internal/service/warranty/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务量指标。HTTP 层在对应操作成功后计数。
var (
	codesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veritag_codes_generated_total",
		Help: "Total number of QR codes generated.",
	})

	activationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veritag_activations_total",
		Help: "Total number of successful activations.",
	})

	sheetsRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veritag_sheets_rendered_total",
		Help: "Total number of sticker sheet PDFs rendered.",
	})
)
