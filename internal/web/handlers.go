package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
	"github.com/hpungsan/captrack/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *ops.Store
	sessions *ops.Sessions
	logger   *log.Logger
	renderer *Renderer
}

// HandleIndex handles GET /: the login page, or a redirect to the active
// user's dashboard.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.sessions.Restore(r.Context()); err == nil {
		http.Redirect(w, r, userPath(sess.UserID), http.StatusFound)
		return
	}
	h.renderer.renderPage(w, "login", LoginPageData{
		PageData: h.page("Log in", ""),
	})
}

// HandleLogin handles POST /login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	key := strings.TrimSpace(r.FormValue("key"))

	sess, err := h.sessions.Login(r.Context(), key)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidUserKey) && !wantsJSON(r) {
			h.renderer.renderPageStatus(w, http.StatusBadRequest, "login", LoginPageData{
				PageData: h.page("Log in", ""),
				Key:      key,
				Error:    "Enter a key like 0x1A2B: \"0x\" followed by hex digits.",
			})
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, sess)
		return
	}
	http.Redirect(w, r, userPath(sess.UserID), http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDashboard handles GET /user/{key}.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	key, ok := h.userKey(w, r)
	if !ok {
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab != "timeline" {
		tab = "checkin"
	}

	dash, err := h.store.Dashboard(r.Context(), key)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, dash)
		return
	}

	h.renderer.renderPage(w, "dashboard", DashboardPageData{
		PageData:  h.page("Capacity Tracker", key),
		Tab:       tab,
		Dashboard: dash,
		Chart:     buildChart(dash.Timeline),
		Unsaved:   r.URL.Query().Get("unsaved") == "1",
	})
}

// HandleAddCheckIn handles POST /user/{key}/checkins.
func (h *Handlers) HandleAddCheckIn(w http.ResponseWriter, r *http.Request) {
	key, ok := h.userKey(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input, err := h.parseCheckInForm(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := h.store.Add(r.Context(), key, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, out)
		return
	}

	target := userPath(key) + "?tab=checkin"
	if !out.Persisted {
		target += "&unsaved=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleTimelineJSON handles GET /user/{key}/timeline.json.
func (h *Handlers) HandleTimelineJSON(w http.ResponseWriter, r *http.Request) {
	key, ok := h.userKey(w, r)
	if !ok {
		return
	}
	points, err := h.store.Timeline(r.Context(), key)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, points)
}

// parseCheckInForm reads energy, attention, physical, journal and an
// optional HH:MM time on the current day.
func (h *Handlers) parseCheckInForm(r *http.Request) (ops.AddInput, error) {
	var input ops.AddInput
	fields := []struct {
		name string
		dst  *int
	}{
		{"energy", &input.Capacity.Energy},
		{"attention", &input.Capacity.Attention},
		{"physical", &input.Capacity.Physical},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(f.name)))
		if err != nil {
			return input, errors.NewInvalidRequest(f.name + " must be an integer")
		}
		*f.dst = v
	}
	if err := capacity.Validate(input.Capacity); err != nil {
		return input, err
	}

	input.Journal = r.FormValue("journal")
	if t := strings.TrimSpace(r.FormValue("time")); t != "" {
		ts, err := ops.ParseClockTime(h.store.Clock().Today(), t)
		if err != nil {
			return input, err
		}
		input.Timestamp = ts
	}
	return input, nil
}

// userKey extracts and validates the {key} path value, rendering the error
// itself when invalid.
func (h *Handlers) userKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if err := capacity.ValidateUserKey(key); err != nil {
		h.renderer.renderError(w, r, err)
		return "", false
	}
	return key, true
}

func (h *Handlers) page(title, userID string) PageData {
	return PageData{Title: title, Version: h.renderer.version, UserID: userID}
}

func userPath(key string) string {
	return "/user/" + url.PathEscape(key)
}
