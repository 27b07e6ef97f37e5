package handlers

import (
	"fmt"
	"net/http"

	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// WidgetHandler serves the embeddable bootstrap script and the health probe.
type WidgetHandler struct {
	widgetJS []byte
	logger   *logging.Logger
}

// NewWidgetHandler creates the widget asset handler.
func NewWidgetHandler(widgetJS []byte, logger *logging.Logger) *WidgetHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WidgetHandler{widgetJS: widgetJS, logger: logger}
}

// HandleWidgetJS serves the embeddable widget JavaScript. Served with a
// wildcard origin regardless of the API CORS allowlist: the script tag on the
// customer page has no credentials to protect.
func (h *WidgetHandler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}

// HandleHealth is the liveness probe.
func (h *WidgetHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WidgetScript renders the bootstrap JavaScript the customer page loads via a
// script tag. It is a loader stub, not a UI: it reads its own data-ss-*
// attributes, keeps the session id in localStorage, and exposes the gateway
// API as window.SmartServe for whatever front-end the page mounts.
func WidgetScript(publicBaseURL, venueID string) []byte {
	return []byte(fmt.Sprintf(`(function () {
  "use strict";
  var script = document.currentScript;
  if (!script) { return; }

  var base = script.getAttribute("data-ss-base") || %q;
  var venue = script.getAttribute("data-ss-venue") || %q;
  var embedKey = script.getAttribute("data-ss-key") || "";

  if (!venue || !embedKey) {
    console.warn("[smartserve] data-ss-venue and data-ss-key are required");
    return;
  }

  var storageKey = "smartserve.session." + venue;
  var sessionId = "";
  try { sessionId = window.localStorage.getItem(storageKey) || ""; } catch (e) {}

  function remember(id) {
    if (id && id !== sessionId) {
      sessionId = id;
      try { window.localStorage.setItem(storageKey, sessionId); } catch (e) {}
    }
  }

  function post(path, body) {
    return fetch(base + path, {
      method: "POST",
      headers: {
        "Content-Type": "application/json",
        "X-Venue-Id": venue,
        "X-Embed-Key": embedKey
      },
      body: JSON.stringify(body)
    }).then(function (res) { return res.json(); });
  }

  window.SmartServe = {
    sessionId: function () { return sessionId; },
    send: function (text) {
      return post("/api/chat", { session_id: sessionId, text: text }).then(function (res) {
        remember(res.session_id);
        return res;
      });
    },
    history: function () {
      return fetch(base + "/api/chat/history?session=" + encodeURIComponent(sessionId), {
        headers: { "X-Venue-Id": venue, "X-Embed-Key": embedKey }
      }).then(function (res) { return res.json(); });
    },
    booking: function (op, payload) {
      return post("/api/booking/" + op, Object.assign({ session_id: sessionId }, payload || {}));
    }
  };

  document.dispatchEvent(new CustomEvent("smartserve:ready"));
})();
`, publicBaseURL, venueID))
}
