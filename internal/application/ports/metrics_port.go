package ports

// LedgerMetrics puerto de métricas de la bitácora. El adaptador Prometheus vive en infraestructura.
type LedgerMetrics interface {
	EntriesWritten(mode string, n int)
	WriteFailed(reason string)
	ValidationRun(complete bool, duplicates int)
}

// NopLedgerMetrics implementación vacía (tests y arranques sin métricas).
type NopLedgerMetrics struct{}

func (NopLedgerMetrics) EntriesWritten(string, int) {}
func (NopLedgerMetrics) WriteFailed(string)         {}
func (NopLedgerMetrics) ValidationRun(bool, int)    {}
