package controllers

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"time"
)

type HealthController struct {
	store     *models.Store
	clock     providers.Clock
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Accounts         int     `json:"accounts"`
	PendingReminders int     `json:"pending_reminders"`
	BonusActive      bool    `json:"bonus_active"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := hc.clock.Now().Sub(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
	}
	hc.store.Update(func(st *models.State) {
		resp.Accounts = len(st.Accounts)
		resp.PendingReminders = len(st.Reminders)
		resp.BonusActive = st.Bonus.Active
	})

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store *models.Store, clock providers.Clock) *HealthController {
	return &HealthController{
		store:     store,
		clock:     clock,
		startTime: clock.Now(),
	}
}
