package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/toqueteos/webbrowser"
	webview "github.com/webview/webview_go"

	"github.com/arko-chat/nativekit/internal/config"
	"github.com/arko-chat/nativekit/internal/fallback"
	"github.com/arko-chat/nativekit/internal/host"
	"github.com/arko-chat/nativekit/internal/logger"
	"github.com/arko-chat/nativekit/internal/models"
)

const (
	width  = 1040
	height = 768
)

const page = `<!doctype html>
<html>
<head>
<style>
  body { margin: 0; font-family: sans-serif; background: #20232a; color: #eee; }
  #toolbar { padding: 12px; display: flex; gap: 8px; }
  #status { padding: 0 12px; white-space: pre; }
  .nk-popup { background: #fafafa; color: #222; border-radius: 6px; box-shadow: 0 8px 24px #0008; }
  .nk-popup-title { display: flex; align-items: center; justify-content: center; font-weight: bold; border-bottom: 1px solid #ddd; }
  .nk-popup-message { padding: 24px; text-align: center; }
  .nk-popup-button { border: 0; border-top: 1px solid #ddd; background: #fff; font-size: 16px; cursor: pointer; }
</style>
</head>
<body>
  <div id="toolbar">
    <button onclick="demoPopup()">Popup</button>
    <button onclick="demoShare()">Share</button>
    <button onclick="rate()">Rate</button>
    <button onclick="networkStatus().then(s => document.getElementById('status').textContent = s)">Network</button>
    <a href="https://github.com/arko-chat/nativekit" style="color: #8ab4f8; align-self: center;">Project page</a>
  </div>
  <div id="status"></div>
  <div id="popup"></div>
  <script>
    document.addEventListener("keydown", e => { if (e.key === "Escape") popupDismiss(); });
  </script>
</body>
</html>`

// linkInterceptor sends clicks on external links to the system browser.
const linkInterceptor = `
    document.addEventListener("click", function(e) {
        const a = e.target.closest("a");
        if (!a || !a.href) return;
        const url = a.href;
        if (!url.startsWith("http://") && !url.startsWith("https://")) return;
        e.preventDefault();
        openExternal(url);
    });
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slogger := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	os.Setenv("WEBKIT_DISABLE_COMPOSITING_MODE", "0")

	w := webview.New(true)
	defer w.Destroy()
	w.SetTitle("nativekit")
	w.SetSize(width, height, webview.HintMin)
	w.Init(linkInterceptor)
	w.SetHtml(page)

	h, err := host.New(host.Options{
		Config: cfg,
		Logger: slogger,
		Screen: fallback.Screen{Width: width, Height: height},
		PopupOptions: []fallback.PopupOption{
			fallback.OnChange(func(d *fallback.Dialog) {
				renderPopup(w, slogger, d)
			}),
		},
	})
	if err != nil {
		slogger.Error("failed to start host", "err", err)
		os.Exit(1)
	}
	defer h.Close()

	bind(w, h, slogger)

	// The webview UI thread is the main context: every tick is dispatched
	// onto it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		interval := cfg.TickInterval.Duration
		if interval <= 0 {
			interval = 16 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Dispatch(h.Tick)
			}
		}
	}()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := h.Metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				slogger.Error("metrics server failed", "err", err)
			}
		}()
	}

	if cfg.Rating.AskOnStartup {
		w.Dispatch(func() {
			if err := h.Rating.Show(0, nil, false); err != nil {
				slogger.Error("rating dialog failed", "err", err)
			}
		})
	}

	w.Run()
	slogger.Info("window closed, shutting down")
}

func bind(w webview.WebView, h *host.Host, slogger *slog.Logger) {
	popup := h.Services.FallbackPopup

	w.Bind("popupClick", func(i int) bool {
		return popup != nil && popup.Click(i)
	})
	w.Bind("popupDismiss", func() bool {
		return popup != nil && popup.Dismiss()
	})

	w.Bind("demoPopup", func() error {
		return h.Services.Popup.Show(models.PopupRequest{
			Title:   "nativekit",
			Message: "Pick one of the buttons.",
			Buttons: []string{"Yes", "Later", "No"},
			OnClose: func(index int) {
				setStatus(w, "popup closed with button "+jsonString(index))
			},
		})
	})

	w.Bind("demoShare", func() error {
		return h.Services.Sharing.Share(models.ShareRequest{
			Text: "Shared from nativekit",
			URL:  "https://github.com/arko-chat/nativekit",
			OnFinished: func(destination string, completed bool) {
				setStatus(w, "shared to "+destination+", completed: "+jsonString(completed))
			},
		})
	})

	w.Bind("rate", func() error {
		return h.Rating.Show(0, func() {
			setStatus(w, "rating state: "+h.Rating.State().String())
		}, true)
	})

	w.Bind("networkStatus", func() string {
		n := h.Services.Network
		return "type: " + n.CurrentType(false).String() +
			"\nreachability: " + n.Reachability().String() +
			"\nfast enough: " + jsonString(n.IsFastEnough())
	})

	w.Bind("openExternal", func(url string) error {
		slogger.Debug("opening external url", "url", url)
		return webbrowser.Open(url)
	})
}

func renderPopup(w webview.WebView, slogger *slog.Logger, d *fallback.Dialog) {
	html := ""
	if d != nil {
		var buf bytes.Buffer
		if err := fallback.Component(*d, "popupClick").Render(context.Background(), &buf); err != nil {
			slogger.Error("rendering popup failed", "err", err)
			return
		}
		html = buf.String()
	}
	w.Dispatch(func() {
		w.Eval("document.getElementById('popup').innerHTML = " + jsonString(html))
	})
}

func setStatus(w webview.WebView, text string) {
	w.Eval("document.getElementById('status').textContent = " + jsonString(text))
}

func jsonString(v any) string {
	out, _ := json.Marshal(v)
	return string(out)
}
