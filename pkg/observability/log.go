package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charm logger. The CLI installs it in verbose mode and the server installs
// it unconditionally.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Install registers h for every event family.
func (h *LogHooks) Install() {
	Register(Hooks{Pipeline: h, Cache: h, Client: h})
}

func (h *LogHooks) OnMaterializeStart(_ context.Context, rows int) {
	h.Logger.Debug("materialize", "rows", rows)
}

func (h *LogHooks) OnMaterializeComplete(_ context.Context, vertices, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("materialize failed", "error", err, "took", d)
		return
	}
	h.Logger.Debug("materialized", "vertices", vertices, "edges", edges, "took", d)
}

func (h *LogHooks) OnReplayStart(_ context.Context, drawn int) {
	h.Logger.Debug("replay", "drawn_constraints", drawn)
}

func (h *LogHooks) OnReplayComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("replay failed", "error", err, "took", d)
		return
	}
	h.Logger.Debug("replayed", "nodes", nodes, "edges", edges, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.Logger.Debug("rendered", "formats", formats, "took", d)
}

func (h *LogHooks) OnHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("typedb request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("typedb response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Warn("typedb call failed", "method", method, "path", path, "error", err)
}
